package domain

import (
	"context"

	"github.com/Vovarama1992/voice-relay/internal/config"
	"github.com/Vovarama1992/voice-relay/internal/ports"
)

type tokenService struct {
	cfg *config.Config
	ex  ports.TokenExchanger
}

func NewTokenService(cfg *config.Config, ex ports.TokenExchanger) ports.TokenIssuer {
	return &tokenService{cfg: cfg, ex: ex}
}

// IssueToken never caches: every call is a fresh exchange.
func (s *tokenService) IssueToken(ctx context.Context) (string, string, error) {
	if !s.cfg.SpeechConfigured() {
		return "", "", newError(KindConfiguration, MsgMissingConfig, nil)
	}

	token, err := s.ex.Exchange(ctx, s.cfg.SpeechKey, s.cfg.SpeechRegion)
	if err != nil {
		return "", "", newError(KindAuthorization, MsgAuthorization, err)
	}
	return token, s.cfg.SpeechRegion, nil
}
