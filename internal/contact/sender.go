// Package contact forwards collaboration pitches from the site's form to a
// hosted form endpoint.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
	"github.com/g-s-k-zoro/gsk-man-page/pkg/validation"
)

// AnonymousName replaces a blank sender name.
const AnonymousName = "Anonymous"

// Config locates the form endpoint. PerMinute caps submissions per client
// IP; zero disables the cap.
type Config struct {
	Endpoint  string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PerMinute int           `mapstructure:"per_minute" yaml:"per_minute"`
}

// DefaultConfig returns the production form endpoint.
func DefaultConfig() Config {
	return Config{
		Endpoint:  "https://formspree.io/f/mldwnwqq",
		Timeout:   10 * time.Second,
		PerMinute: 5,
	}
}

// Submission is the form as posted by the browser. Honeypot is a hidden
// field that people leave empty.
type Submission struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Idea     string `json:"idea" validate:"required,max=5000"`
	Honeypot string `json:"honeypot"`
}

// Outcome tells the caller what happened to an accepted submission.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeDropped Outcome = "dropped"
)

type payload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Idea  string `json:"idea"`
}

// Sender posts submissions to the form endpoint.
type Sender struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewSender builds a Sender. A nil client gets one with cfg.Timeout.
func NewSender(cfg Config, client *http.Client, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Sender{cfg: cfg, client: client, logger: logger}
}

// Submit validates and forwards sub. A filled honeypot is accepted and
// silently dropped. Endpoint failures are UNAVAILABLE and safe to retry.
func (s *Sender) Submit(ctx context.Context, sub Submission) (Outcome, error) {
	if sub.Honeypot != "" {
		s.logger.Info("Dropped contact submission caught by honeypot")
		return OutcomeDropped, nil
	}

	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Idea = strings.TrimSpace(sub.Idea)
	if err := validation.Struct(sub); err != nil {
		return "", err
	}
	if sub.Name == "" {
		sub.Name = AnonymousName
	}

	body, err := json.Marshal(payload{Name: sub.Name, Email: sub.Email, Idea: sub.Idea})
	if err != nil {
		return "", appErrors.NewInternal("failed to encode submission", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", appErrors.NewConfiguration("invalid contact endpoint")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("Contact endpoint unreachable", zap.Error(err))
		return "", appErrors.NewUnavailable("contact form is temporarily unavailable", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("Contact endpoint rejected submission", zap.Int("status", resp.StatusCode))
		return "", appErrors.NewUnavailable("contact form is temporarily unavailable",
			fmt.Errorf("endpoint responded %d", resp.StatusCode))
	}

	s.logger.Info("Contact submission forwarded", zap.String("name", sub.Name))
	return OutcomeSent, nil
}
