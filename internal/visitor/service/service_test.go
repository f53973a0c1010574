package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"frontdesk/internal/audit"
	"frontdesk/internal/notification"
	"frontdesk/internal/screening"
	screeningmocks "frontdesk/internal/screening/mocks"
	usermodels "frontdesk/internal/user/models"
	userstore "frontdesk/internal/user/store"
	"frontdesk/internal/visitor/models"
	"frontdesk/internal/visitor/store"
	dErrors "frontdesk/pkg/domain-errors"
	"frontdesk/pkg/requestcontext"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.Notification
}

func (n *recordingNotifier) Dispatch(_ context.Context, note notification.Notification) (*notification.Record, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
	return &notification.Record{Type: note.Type, RecipientID: note.RecipientID}, nil
}

func (n *recordingNotifier) types() []notification.Type {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.Type, 0, len(n.sent))
	for _, note := range n.sent {
		out = append(out, note.Type)
	}
	return out
}

type VisitorServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	visitors  *store.InMemory
	sentiment *screeningmocks.MockSentimentAnalyzer
	faces     *screeningmocks.MockFaceAnalyzer
	notifier  *recordingNotifier
	sink      *audit.MemorySink
	service   *Service
	host      *usermodels.User
	now       time.Time
}

func TestVisitorServiceSuite(t *testing.T) {
	suite.Run(t, new(VisitorServiceSuite))
}

func (s *VisitorServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.visitors = store.NewInMemory()
	s.sentiment = screeningmocks.NewMockSentimentAnalyzer(s.ctrl)
	s.faces = screeningmocks.NewMockFaceAnalyzer(s.ctrl)
	s.notifier = &recordingNotifier{}
	s.sink = audit.NewMemorySink()
	s.now = time.Date(2026, 5, 4, 14, 30, 0, 0, time.UTC)

	users := userstore.NewInMemory()
	host, err := usermodels.NewUser(usermodels.NewUserParams{
		Name: "Hosting Harper", Email: "harper@example.com", Password: "visitor-host-1", Department: "Sales",
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(users.Create(context.Background(), host))
	s.host = host

	s.service = New(s.visitors, users,
		WithSentimentAnalyzer(s.sentiment),
		WithFaceAnalyzer(s.faces),
		WithNotifier(s.notifier),
		WithAuditPublisher(audit.NewPublisher(s.sink)),
	)
}

func (s *VisitorServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *VisitorServiceSuite) createRequest(notes string) models.CreateVisitorRequest {
	visit := s.now.Add(2 * time.Hour)
	return models.CreateVisitorRequest{
		Name:      "Vera Visitor",
		Company:   "Acme",
		Email:     " Vera@Acme.example.com ",
		Host:      s.host.ID,
		Purpose:   "Quarterly review",
		VisitDate: &visit,
		Notes:     notes,
	}
}

func (s *VisitorServiceSuite) create() *models.Visitor {
	v, err := s.service.Create(s.ctx(), s.createRequest(""))
	s.Require().NoError(err)
	return v
}

func (s *VisitorServiceSuite) TestCreate() {
	s.Run("pre-registers without screening when notes are empty", func() {
		s.sentiment.EXPECT().DetectSentiment(gomock.Any(), gomock.Any()).Times(0)

		v := s.create()
		s.Equal(models.StatusPreRegistered, v.Status)
		s.Equal("vera@acme.example.com", v.Email)
		s.Nil(v.CheckInTime)
		s.Empty(v.AIAnalysis.SecurityConcerns)
		s.Contains(s.notifier.types(), notification.TypeVisitorApprovalRequest)
	})

	s.Run("flags strongly negative notes", func() {
		s.sentiment.EXPECT().DetectSentiment(gomock.Any(), "angry about last visit").
			Return(&screening.Sentiment{Label: screening.SentimentNegative, Scores: screening.SentimentScores{Negative: 0.93}}, nil)

		v, err := s.service.Create(s.ctx(), s.createRequest("angry about last visit"))
		s.Require().NoError(err)
		s.Equal([]string{screening.ConcernNegativeSentiment}, v.AIAnalysis.SecurityConcerns)
		s.Require().NotNil(v.AIAnalysis.Sentiment)

		stored, err := s.visitors.FindByID(context.Background(), v.ID)
		s.Require().NoError(err)
		s.Equal(v.AIAnalysis.SecurityConcerns, stored.AIAnalysis.SecurityConcerns)
	})

	s.Run("analyzer failure does not block creation", func() {
		s.sentiment.EXPECT().DetectSentiment(gomock.Any(), gomock.Any()).Return(nil, errors.New("aws down"))

		v, err := s.service.Create(s.ctx(), s.createRequest("routine delivery"))
		s.Require().NoError(err)
		s.Nil(v.AIAnalysis.Sentiment)
		s.Empty(v.AIAnalysis.SecurityConcerns)
	})

	s.Run("missing required fields", func() {
		_, err := s.service.Create(s.ctx(), models.CreateVisitorRequest{Name: "Only Name"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "Host is required")
		s.Contains(err.Error(), "Purpose is required")
		s.Contains(err.Error(), "Visit date is required")
	})

	s.Run("unknown host", func() {
		req := s.createRequest("")
		req.Host = uuid.New()
		_, err := s.service.Create(s.ctx(), req)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal("Host not found", dErrors.MessageOf(err))
	})

	s.Run("unknown host behind the user service", func() {
		svc := New(s.visitors, classifiedMiss{})
		_, err := svc.Create(s.ctx(), s.createRequest(""))
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal("Host not found", dErrors.MessageOf(err))
	})
}

// classifiedMiss answers lookups the way the user service does.
type classifiedMiss struct{}

func (classifiedMiss) FindByID(context.Context, uuid.UUID) (*usermodels.User, error) {
	return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
}

func (s *VisitorServiceSuite) TestCheckInAndOut() {
	v := s.create()

	_, err := s.service.CheckOut(s.ctx(), v.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest), "cannot check out before check-in")

	in, err := s.service.CheckIn(s.ctx(), v.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCheckedIn, in.Status)
	s.Require().NotNil(in.CheckInTime)
	s.True(s.now.Equal(*in.CheckInTime))

	_, err = s.service.CheckIn(s.ctx(), v.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest), "second check-in is refused")

	out, err := s.service.CheckOut(s.ctx(), v.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCheckedOut, out.Status)
	s.NotNil(out.CheckOutTime)

	s.Equal([]notification.Type{
		notification.TypeVisitorApprovalRequest,
		notification.TypeVisitorArrival,
		notification.TypeVisitorCheckout,
	}, s.notifier.types())

	var actions []audit.Action
	for _, e := range s.sink.All() {
		actions = append(actions, e.Action)
	}
	s.Equal([]audit.Action{audit.ActionVisitorCreated, audit.ActionVisitorCheckedIn, audit.ActionVisitorCheckedOut}, actions)
}

func (s *VisitorServiceSuite) TestCheckInUnknownVisitor() {
	_, err := s.service.CheckIn(s.ctx(), uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *VisitorServiceSuite) TestUpdate() {
	s.Run("approval from pre-registered", func() {
		v := s.create()
		approved := models.StatusApproved
		badge := true
		got, err := s.service.Update(s.ctx(), v.ID, models.UpdateVisitorRequest{Status: &approved, BadgePrinted: &badge})
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, got.Status)
		s.True(got.BadgePrinted)

		in, err := s.service.CheckIn(s.ctx(), v.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCheckedIn, in.Status)
	})

	s.Run("status cannot jump to checked-in", func() {
		v := s.create()
		checkedIn := models.StatusCheckedIn
		_, err := s.service.Update(s.ctx(), v.ID, models.UpdateVisitorRequest{Status: &checkedIn})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		stored, err := s.service.Get(s.ctx(), v.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPreRegistered, stored.Status)
		s.Nil(stored.CheckInTime)
	})

	s.Run("rejected visitor cannot check in", func() {
		v := s.create()
		rejected := models.StatusRejected
		_, err := s.service.Update(s.ctx(), v.ID, models.UpdateVisitorRequest{Status: &rejected})
		s.Require().NoError(err)

		_, err = s.service.CheckIn(s.ctx(), v.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *VisitorServiceSuite) TestDelete() {
	v := s.create()
	s.Require().NoError(s.service.Delete(s.ctx(), v.ID))
	_, err := s.service.Get(s.ctx(), v.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.True(dErrors.HasCode(s.service.Delete(s.ctx(), v.ID), dErrors.CodeNotFound))
}

func (s *VisitorServiceSuite) TestList() {
	late := s.createRequest("")
	later := s.now.Add(72 * time.Hour)
	late.VisitDate = &later
	first, err := s.service.Create(s.ctx(), late)
	s.Require().NoError(err)
	s.create()

	all, err := s.service.List(s.ctx())
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(first.ID, all[0].ID)
}

func (s *VisitorServiceSuite) TestPhotoScreening() {
	s.Run("face analysis", func() {
		s.faces.EXPECT().DetectFaces(gomock.Any(), []byte("jpeg")).
			Return(&screening.FaceAnalysis{FacesDetected: 1, Faces: []screening.Face{{Confidence: 99}}}, nil)

		got, err := s.service.AnalyzePhoto(s.ctx(), []byte("jpeg"))
		s.Require().NoError(err)
		s.Equal(1, got.FacesDetected)
	})

	s.Run("provider error surfaces as internal", func() {
		s.faces.EXPECT().DetectFaces(gomock.Any(), gomock.Any()).Return(nil, errors.New("throttled"))
		_, err := s.service.AnalyzePhoto(s.ctx(), []byte("jpeg"))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("empty upload", func() {
		_, err := s.service.AnalyzePhoto(s.ctx(), nil)
		s.Equal("No photo provided", dErrors.MessageOf(err))
	})

	s.Run("analysis disabled", func() {
		svc := New(s.visitors, userstore.NewInMemory())
		_, err := svc.AnalyzePhoto(s.ctx(), []byte("jpeg"))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("watchlist placeholder", func() {
		got, err := s.service.CheckWatchlist(s.ctx(), []byte("jpeg"))
		s.Require().NoError(err)
		s.False(got.WatchlistMatch)
		s.InDelta(0.05, got.Confidence, 1e-9)
	})
}
