package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// FileMailer writes each message as an .eml file, for development setups
// without an SMTP relay.
type FileMailer struct {
	dir     string
	from    string
	limiter *rate.Limiter
	logger  *slog.Logger
	now     func() time.Time
	render  func(w io.Writer, msg Message) error
}

func NewFileMailer(dir, from string, limiter *rate.Limiter, logger *slog.Logger) (*FileMailer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create mail dir: %w", err)
	}
	f := &FileMailer{dir: dir, from: from, limiter: limiter, logger: logger, now: time.Now}
	f.render = func(w io.Writer, msg Message) error {
		_, err := buildMessage(f.from, msg).WriteTo(w)
		return err
	}
	return f, nil
}

func (f *FileMailer) Send(ctx context.Context, msg Message) error {
	if err := wait(ctx, f.limiter); err != nil {
		return err
	}

	name := fmt.Sprintf("%s-%s.eml", f.now().Format("20060102-150405"), uuid.NewString())
	path := filepath.Join(f.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mail file: %w", err)
	}

	err = f.render(file, msg)
	if closeErr := file.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if err != nil {
		// a partial .eml must not look like a sent message
		if rmErr := os.Remove(path); rmErr != nil {
			f.logger.Warn("remove partial mail file", slog.String("path", path), slog.String("error", rmErr.Error()))
		}
		return fmt.Errorf("write mail file: %w", err)
	}

	f.logger.Info("email written", slog.String("to", msg.To), slog.String("path", path))
	return nil
}
