package catalog

import "go.uber.org/zap"

func NewModule(backend Backend, logger *zap.Logger) *Controller {
	svc := NewService(backend)
	uc := NewUseCase(svc)
	return NewController(uc, logger)
}
