package handler

import (
	"relief-portal-go/internal/portal"
	"relief-portal-go/internal/session"
	"relief-portal-go/pkg/logger"
)

type Handlers struct {
	Portal   *portal.Portal
	Sessions *session.Manager
	log      logger.Logger
}

func New(p *portal.Portal, log logger.Logger) *Handlers {
	return &Handlers{
		Portal:   p,
		Sessions: p.Session(),
		log:      log,
	}
}
