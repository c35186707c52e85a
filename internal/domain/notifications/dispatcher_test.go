package notifications_test

//go:generate mockgen -source=repository.go -destination=mocks/mocks.go -package=mocks Repository

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"epaws/internal/domain/notifications"
	"epaws/internal/domain/notifications/mocks"
	"epaws/internal/platform/metrics"
)

type DispatcherSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	repo       *mocks.MockRepository
	metrics    *metrics.Metrics
	dispatcher *notifications.Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = mocks.NewMockRepository(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.dispatcher = notifications.NewDispatcher(s.repo, nil, s.metrics)
}

func (s *DispatcherSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DispatcherSuite) TestNotify_CreatesMailboxEntry() {
	related := &notifications.Related{Kind: notifications.RelatedAdoption, ID: "adp-1"}

	s.repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n notifications.Notification) error {
			s.Equal("adopter-1", n.UserID)
			s.Equal(notifications.TypeAdoptionUpdate, n.Type)
			s.Equal("Actualización de adopción", n.Title)
			s.False(n.Read)
			s.NotEmpty(n.ID)
			s.Equal(related, n.Related)
			return nil
		})

	ok := s.dispatcher.Notify(context.Background(), "adopter-1", notifications.TypeAdoptionUpdate,
		"Actualización de adopción", "Tu solicitud de adopción está siendo revisada", related)

	s.True(ok)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.NotificationsCreated.WithLabelValues("adoption_update")))
}

func (s *DispatcherSuite) TestNotify_StorageFailureIsSwallowed() {
	s.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	ok := s.dispatcher.Notify(context.Background(), "org-1", notifications.TypeNewCase, "t", "b", nil)

	s.False(ok)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SideEffectFailures.WithLabelValues("notifications")))
}

func (s *DispatcherSuite) TestNotify_EmptyRecipientSkipsStorage() {
	// sin EXPECT: cualquier llamada al repo falla el test
	ok := s.dispatcher.Notify(context.Background(), "  ", notifications.TypeSystem, "t", "b", nil)
	s.False(ok)
}
