package notify

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ridebook/go-ride-client/sessions"
)

// Service owns push registration: permission, delivery-token retrieval,
// local persistence and backend forwarding. Safe to initialize repeatedly;
// re-registration overwrites the stored token.
type Service struct {
	messenger Messenger
	sessions  *sessions.Store
	registrar Registrar
	ingestor  *Ingestor
	vapidKey  string
	logger    zerolog.Logger

	lock        sync.Mutex
	unsubscribe func()
}

func NewService(messenger Messenger, store *sessions.Store, registrar Registrar, ingestor *Ingestor, vapidKey string, logger zerolog.Logger) *Service {
	return &Service{
		messenger: messenger,
		sessions:  store,
		registrar: registrar,
		ingestor:  ingestor,
		vapidKey:  vapidKey,
		logger:    logger,
	}
}

// InitAndRegister requests notification permission, obtains a delivery token
// (falling back to a parameterless request when the keyed one fails), stores
// it, subscribes the foreground intake and — when an identity id is known —
// forwards the token to the backend fire-and-forget.
//
// A permission denial or a token-retrieval failure yields ("", nil):
// registration is incomplete, not fatal.
func (s *Service) InitAndRegister(ctx context.Context, userID string) (string, error) {
	granted, err := s.messenger.RequestPermission(ctx)
	if err != nil {
		return "", errors.Wrap(err, "[Service.InitAndRegister] RequestPermission")
	}
	if !granted {
		s.logger.Debug().Msg("notification permission denied, skipping registration")
		return "", nil
	}

	token, err := s.messenger.DeliveryToken(ctx, TokenOptions{VAPIDKey: s.vapidKey})
	if err != nil {
		s.logger.Debug().Err(err).Msg("keyed delivery token request failed, retrying without options")
		token, err = s.messenger.DeliveryToken(ctx, TokenOptions{})
	}
	if err != nil {
		s.logger.Debug().Err(err).Msg("delivery token unavailable")
		return "", nil
	}

	s.sessions.SetDeliveryToken(token)

	if err := s.subscribeForeground(); err != nil {
		s.logger.Debug().Err(err).Msg("foreground subscription failed")
	}

	if userID != "" {
		go s.forward(userID, token)
	}
	return token, nil
}

// RegisterStoredToken forwards the locally stored delivery token, when one
// exists, to the backend for the given identity. Used by the login flow once
// an id becomes known for an anonymously registered token.
func (s *Service) RegisterStoredToken(ctx context.Context, userID string) error {
	token := s.sessions.DeliveryToken()
	if token == "" {
		return nil
	}
	if err := s.registrar.RegisterToken(ctx, userID, token); err != nil {
		return errors.Wrap(err, "[Service.RegisterStoredToken]")
	}
	return nil
}

// Close detaches the foreground subscription.
func (s *Service) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// subscribeForeground attaches the ingest handler, replacing any earlier
// subscription so repeated initialization never double-ingests.
func (s *Service) subscribeForeground() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	unsubscribe, err := s.messenger.Subscribe(s.ingestor.HandleForeground)
	if err != nil {
		return err
	}
	s.unsubscribe = unsubscribe
	return nil
}

// forward is the detached best-effort backend registration; failure is only
// logged.
func (s *Service) forward(userID, token string) {
	if err := s.registrar.RegisterToken(context.Background(), userID, token); err != nil {
		s.logger.Debug().Err(err).Str("userId", userID).Msg("delivery token registration failed")
	}
}
