package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type memTicketRepo struct {
	mu      sync.Mutex
	tickets []*domain.Ticket
	seq     int
}

func (r *memTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets = append(r.tickets, &clone)
	return nil
}

func (r *memTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.ID == id {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memTicketRepo) ListByRequester(ctx context.Context, requesterID string, limit, offset int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Ticket, 0)
	for _, ticket := range r.tickets {
		if ticket.RequesterID == requesterID {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (r *memTicketRepo) ListAll(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		out = append(out, *ticket)
	}
	return out, nil
}

func TestCreateTicketDefaults(t *testing.T) {
	repo := &memTicketRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	var published []events.Event
	dispatcher.Subscribe(events.EventTicketCreated, func(ctx context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})
	svc := NewTicketService(repo, dispatcher)

	ticket, err := svc.Create(context.Background(), "user-1", TicketCreateInput{
		Title:       "Printer broken",
		Description: "It makes a grinding noise.",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketCategoryGeneral, ticket.Category)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "user-1", ticket.RequesterID)
	assert.NotEmpty(t, ticket.ExternalKey)

	require.Len(t, published, 1)
	assert.Equal(t, events.EventTicketCreated, published[0].Type)
	assert.Equal(t, "user-1", published[0].ActorID)
}

func TestCreateTicketValidation(t *testing.T) {
	svc := NewTicketService(&memTicketRepo{}, nil)

	_, err := svc.Create(context.Background(), "user-1", TicketCreateInput{Title: "", Description: "x"})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)

	_, err = svc.Create(context.Background(), "user-1", TicketCreateInput{Title: "x", Description: "  "})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)

	_, err = svc.Create(context.Background(), "user-1", TicketCreateInput{
		Title: "x", Description: "y", Category: "Bogus",
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)

	_, err = svc.Create(context.Background(), "user-1", TicketCreateInput{
		Title: "x", Description: "y", Priority: "urgent",
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestGetForUserOwnership(t *testing.T) {
	repo := &memTicketRepo{}
	svc := NewTicketService(repo, nil)

	ticket, err := svc.Create(context.Background(), "user-1", TicketCreateInput{
		Title: "VPN down", Description: "Cannot connect since this morning.",
	})
	require.NoError(t, err)

	got, err := svc.GetForUser(context.Background(), "user-1", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	_, err = svc.GetForUser(context.Background(), "user-2", ticket.ID)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)

	_, err = svc.GetForUser(context.Background(), "user-1", "missing")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestListForUserScoped(t *testing.T) {
	repo := &memTicketRepo{}
	svc := NewTicketService(repo, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), "user-1", TicketCreateInput{
			Title: fmt.Sprintf("issue %d", i), Description: "details",
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), "user-2", TicketCreateInput{
		Title: "other", Description: "details",
	})
	require.NoError(t, err)

	mine, err := svc.ListForUser(context.Background(), "user-1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	all, err := svc.ListAll(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
