package service

import (
	"database/sql"
	"errors"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
	ErrGameFinished          = errors.New("game already has a final result")
	ErrInvalidScore          = errors.New("scores must be present and not negative")
	ErrPenaltyWinnerRequired = errors.New("a tied playoff game needs a penalty winner")
	ErrTeamsUndetermined     = errors.New("the teams of this game are not known yet")
	ErrInvalidGroupCount     = errors.New("the number of groups must be a power of two")
	ErrInvalidGroupSize      = errors.New("every group needs at least two teams")
	ErrInvalidHonorRoll      = errors.New("honor roll picks must be distinct teams of the tournament")
)

// notFound turns a missing row into ErrNotFound and leaves every other error alone.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
