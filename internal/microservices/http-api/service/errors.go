package service

import (
	"errors"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/repository"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// notFound maps a repository miss to a 404 and passes other errors through.
func notFound(err error, field, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(field, message)
	}
	return err
}

// checkPage rejects pages past the last one, page 1 of an empty list is fine.
func checkPage(page int, total int64) error {
	if page > 1 && page > dto.TotalPages(total, dto.PageSize) {
		return apperr.NotFound("page", "invalid page")
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
