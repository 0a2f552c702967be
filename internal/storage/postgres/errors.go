package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/jackc/pgx/v5/pgconn"
)

// wrapErr оборачивает ошибку драйвера. Таймауты и сетевые сбои превращаются
// в storage.ErrUnavailable, остальные ошибки остаются как есть.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %v", op, storage.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08 — connection exception, 53 — insufficient resources,
		// 57P01..57P03 — сервер остановлен или недоступен
		return strings.HasPrefix(pgErr.Code, "08") ||
			strings.HasPrefix(pgErr.Code, "53") ||
			pgErr.Code == "57P01" || pgErr.Code == "57P02" || pgErr.Code == "57P03"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return strings.Contains(err.Error(), "closed pool")
}
