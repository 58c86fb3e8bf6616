package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	contactmetrics "contactbook/internal/contact/metrics"
	"contactbook/internal/contact/models"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/audit"
	"contactbook/pkg/platform/audit/publisher"
	"contactbook/pkg/platform/audit/store/memory"
	"contactbook/pkg/requestcontext"
)

type ContactServiceSuite struct {
	suite.Suite
	ctx        context.Context
	service    *Service
	auditStore *memory.InMemoryStore
	metrics    *contactmetrics.Metrics
	logs       *bytes.Buffer
	contact1   *models.Contact
	contact2   *models.Contact
}

func TestContactServiceSuite(t *testing.T) {
	suite.Run(t, new(ContactServiceSuite))
}

func (s *ContactServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.auditStore = memory.NewInMemoryStore()
	s.metrics = contactmetrics.New(prometheus.NewRegistry())
	s.logs = &bytes.Buffer{}
	s.service = NewInMemory(
		WithLogger(slog.New(slog.NewTextHandler(s.logs, nil))),
		WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
	)

	var err error
	s.contact1, err = models.NewContact("123", "Alice", "Smith", "5551234567", "789 Oak Ave")
	s.Require().NoError(err)
	s.contact2, err = models.NewContact("456", "Bob", "Jones", "5559876543", "321 Elm St")
	s.Require().NoError(err)
}

func ptr(v string) *string { return &v }

// TestAddContact verifies insertion and the uniqueness invariant.
func (s *ContactServiceSuite) TestAddContact() {
	s.Run("adds a new contact", func() {
		s.True(s.service.AddContact(s.ctx, s.contact1))
		s.Equal(1, s.service.Count(s.ctx))

		got, ok := s.service.GetContact(s.ctx, "123")
		s.Require().True(ok)
		s.Equal("123", got.ID())
		s.Equal("Alice", got.FirstName())
		s.Equal("Smith", got.LastName())
		s.Equal("5551234567", got.Phone())
		s.Equal("789 Oak Ave", got.Address())
	})

	s.Run("rejects duplicate ID without changing count", func() {
		s.False(s.service.AddContact(s.ctx, s.contact1))
		s.Equal(1, s.service.Count(s.ctx))

		other, err := models.NewContact("123", "Carol", "White", "5550000000", "1 Main St")
		s.Require().NoError(err)
		s.False(s.service.AddContact(s.ctx, other))

		got, ok := s.service.GetContact(s.ctx, "123")
		s.Require().True(ok)
		s.Equal("Alice", got.FirstName(), "existing contact must not be replaced")
	})

	s.Run("rejects nil contact", func() {
		s.False(s.service.AddContact(s.ctx, nil))
		s.Equal(1, s.service.Count(s.ctx))
	})

	s.Run("adds a second distinct contact", func() {
		s.True(s.service.AddContact(s.ctx, s.contact2))
		s.Equal(2, s.service.Count(s.ctx))
	})
}

func (s *ContactServiceSuite) TestAddErrors() {
	s.Require().NoError(s.service.Add(s.ctx, s.contact1))

	err := s.service.Add(s.ctx, s.contact1)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	err = s.service.Add(s.ctx, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	s.InDelta(1, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues("add", "conflict")), 0)
	s.InDelta(1, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues("add", "missing")), 0)
	s.InDelta(1, testutil.ToFloat64(s.metrics.ContactsAdded), 0)
}

func (s *ContactServiceSuite) TestCreate() {
	s.Run("constructs and stores", func() {
		c, err := s.service.Create(s.ctx, "789", "Dana", "Lee", "5551112222", "5 Birch Ln")
		s.Require().NoError(err)
		s.Equal("789", c.ID())
		s.Equal(1, s.service.Count(s.ctx))
	})

	s.Run("invalid field is a validation error and stores nothing", func() {
		_, err := s.service.Create(s.ctx, "790", "Dana", "Lee", "123", "5 Birch Ln")
		s.Require().Error(err)
		s.True(models.IsValidationError(err))
		s.Equal(1, s.service.Count(s.ctx))
	})

	s.Run("duplicate ID is a conflict", func() {
		_, err := s.service.Create(s.ctx, "789", "Eve", "Lee", "5551112222", "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

// TestDeleteContact verifies removal and the existence signal.
func (s *ContactServiceSuite) TestDeleteContact() {
	s.Run("deletes an existing contact", func() {
		s.Require().True(s.service.AddContact(s.ctx, s.contact1))
		s.True(s.service.DeleteContact(s.ctx, "123"))
		s.Equal(0, s.service.Count(s.ctx))

		_, ok := s.service.GetContact(s.ctx, "123")
		s.False(ok)
	})

	s.Run("unknown ID returns false and leaves count unchanged", func() {
		s.Require().True(s.service.AddContact(s.ctx, s.contact2))
		s.False(s.service.DeleteContact(s.ctx, "999"))
		s.Equal(1, s.service.Count(s.ctx))
	})

	s.Run("empty ID returns false", func() {
		s.False(s.service.DeleteContact(s.ctx, ""))
		s.Equal(1, s.service.Count(s.ctx))
	})

	s.Run("error API reports codes", func() {
		s.True(dErrors.HasCode(s.service.Delete(s.ctx, "999"), dErrors.CodeNotFound))
		s.True(dErrors.HasCode(s.service.Delete(s.ctx, ""), dErrors.CodeBadRequest))
	})

	s.Run("deleted ID can be reused", func() {
		s.Require().True(s.service.DeleteContact(s.ctx, "456"))
		s.True(s.service.AddContact(s.ctx, s.contact2))
	})
}

// TestUpdateContact verifies partial updates and rejection semantics.
func (s *ContactServiceSuite) TestUpdateContact() {
	s.Require().True(s.service.AddContact(s.ctx, s.contact1))

	s.Run("updates every provided field", func() {
		ok := s.service.UpdateContact(s.ctx, "123", models.ContactPatch{
			FirstName: ptr("Alicia"),
			LastName:  ptr("Smithson"),
			Phone:     ptr("5550001111"),
			Address:   ptr("999 Pine Rd"),
		})
		s.Require().True(ok)

		got, found := s.service.GetContact(s.ctx, "123")
		s.Require().True(found)
		s.Equal("Alicia", got.FirstName())
		s.Equal("Smithson", got.LastName())
		s.Equal("5550001111", got.Phone())
		s.Equal("999 Pine Rd", got.Address())
	})

	s.Run("changes only the provided field", func() {
		s.Require().True(s.service.UpdateContact(s.ctx, "123", models.ContactPatch{FirstName: ptr("Ally")}))

		got, _ := s.service.GetContact(s.ctx, "123")
		s.Equal("Ally", got.FirstName())
		s.Equal("Smithson", got.LastName())
		s.Equal("5550001111", got.Phone())
		s.Equal("999 Pine Rd", got.Address())
	})

	s.Run("empty string is applied, not skipped", func() {
		s.Require().True(s.service.UpdateContact(s.ctx, "123", models.ContactPatch{Address: ptr("")}))
		got, _ := s.service.GetContact(s.ctx, "123")
		s.Empty(got.Address())
	})

	s.Run("empty patch succeeds and changes nothing", func() {
		before, _ := s.service.GetContact(s.ctx, "123")
		s.True(s.service.UpdateContact(s.ctx, "123", models.ContactPatch{}))
		after, _ := s.service.GetContact(s.ctx, "123")
		s.Equal(before, after)
	})

	s.Run("invalid phone returns false and keeps old phone", func() {
		s.False(s.service.UpdateContact(s.ctx, "123", models.ContactPatch{Phone: ptr("123")}))
		got, _ := s.service.GetContact(s.ctx, "123")
		s.Equal("5550001111", got.Phone())
		s.Contains(s.logs.String(), "contact update rejected")
	})

	s.Run("unknown ID returns false", func() {
		s.False(s.service.UpdateContact(s.ctx, "999", models.ContactPatch{
			FirstName: ptr("Name"),
			LastName:  ptr("Last"),
			Phone:     ptr("1234567890"),
			Address:   ptr("Addr"),
		}))
		s.Equal(1, s.service.Count(s.ctx))
	})
}

// TestUpdateKeepsFieldsSetBeforeRejection verifies that fields earlier in the
// update order stay changed when a later field is rejected.
func (s *ContactServiceSuite) TestUpdateKeepsFieldsSetBeforeRejection() {
	ctx := requestcontext.WithRequestID(s.ctx, "req-partial")
	s.Require().True(s.service.AddContact(ctx, s.contact1))

	s.False(s.service.UpdateContact(ctx, "123", models.ContactPatch{
		FirstName: ptr("Bob"),
		Phone:     ptr("123"),
		Address:   ptr("1 New St"),
	}))

	got, ok := s.service.GetContact(s.ctx, "123")
	s.Require().True(ok)
	s.Equal("Bob", got.FirstName())
	s.Equal("Smith", got.LastName())
	s.Equal("5551234567", got.Phone())
	s.Equal("789 Oak Ave", got.Address())

	events, err := s.auditStore.ListByContact(s.ctx, "123")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(string(audit.EventContactUpdated), events[1].Action)
	s.Equal([]string{"first_name"}, events[1].Fields)

	s.InDelta(1, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues("update", "validation")), 0)
	s.InDelta(0, testutil.ToFloat64(s.metrics.ContactsUpdated), 0)
	s.Contains(s.logs.String(), "level=WARN msg=\"contact update rejected\"")
}

// TestAtomicUpdate verifies that with WithAtomicUpdates a later invalid field
// prevents earlier valid fields in the same update from being applied.
func (s *ContactServiceSuite) TestAtomicUpdate() {
	s.service = NewInMemory(
		WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
		WithAtomicUpdates(),
	)
	s.Require().True(s.service.AddContact(s.ctx, s.contact1))

	_, err := s.service.Update(s.ctx, "123", models.ContactPatch{
		FirstName: ptr("Alicia"),
		LastName:  ptr("Smithson"),
		Address:   ptr(strings.Repeat("a", 31)),
	})
	s.Require().Error(err)
	s.True(models.IsValidationError(err))
	s.Contains(err.Error(), "address")

	got, _ := s.service.GetContact(s.ctx, "123")
	s.Equal("Alice", got.FirstName())
	s.Equal("Smith", got.LastName())
	s.Equal("789 Oak Ave", got.Address())

	events, err := s.auditStore.ListByContact(s.ctx, "123")
	s.Require().NoError(err)
	s.Len(events, 1)

	s.InDelta(1, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues("update", "validation")), 0)
	s.InDelta(0, testutil.ToFloat64(s.metrics.ContactsUpdated), 0)
}

func (s *ContactServiceSuite) TestUpdateErrors() {
	_, err := s.service.Update(s.ctx, "999", models.ContactPatch{FirstName: ptr("X")})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Require().True(s.service.AddContact(s.ctx, s.contact1))
	updated, err := s.service.Update(s.ctx, "123", models.ContactPatch{LastName: ptr("Jones")})
	s.Require().NoError(err)
	s.Equal("Jones", updated.LastName())
}

// TestLookupReturnsCopies verifies callers cannot bypass validation by
// mutating what the directory hands out.
func (s *ContactServiceSuite) TestLookupReturnsCopies() {
	s.Require().True(s.service.AddContact(s.ctx, s.contact1))

	s.Run("mutating the added contact does not change the directory", func() {
		s.Require().NoError(s.contact1.SetFirstName("Mallory"))
		got, _ := s.service.GetContact(s.ctx, "123")
		s.Equal("Alice", got.FirstName())
	})

	s.Run("mutating a lookup result does not change the directory", func() {
		got, _ := s.service.GetContact(s.ctx, "123")
		s.Require().NoError(got.SetPhone("0000000000"))

		again, _ := s.service.GetContact(s.ctx, "123")
		s.Equal("5551234567", again.Phone())
	})

	s.Run("mutating a listed contact does not change the directory", func() {
		list, err := s.service.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Require().NoError(list[0].SetLastName("Changed"))

		again, _ := s.service.GetContact(s.ctx, "123")
		s.Equal("Smith", again.LastName())
	})
}

func (s *ContactServiceSuite) TestGetContact() {
	_, ok := s.service.GetContact(s.ctx, "missing")
	s.False(ok)

	_, err := s.service.Get(s.ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ContactServiceSuite) TestInstancesAreIndependent() {
	other := NewInMemory()
	s.Require().True(s.service.AddContact(s.ctx, s.contact1))
	s.Equal(0, other.Count(s.ctx))
	s.True(other.AddContact(s.ctx, s.contact1))
}

// TestAuditTrail verifies each successful mutation is recorded once.
func (s *ContactServiceSuite) TestAuditTrail() {
	fixed := time.Date(2025, 12, 3, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(requestcontext.WithRequestID(s.ctx, "req-1"), fixed)

	s.Require().True(s.service.AddContact(ctx, s.contact1))
	s.Require().True(s.service.UpdateContact(ctx, "123", models.ContactPatch{Phone: ptr("5550001111")}))
	s.Require().False(s.service.UpdateContact(ctx, "123", models.ContactPatch{Phone: ptr("bad")}))
	s.Require().True(s.service.DeleteContact(ctx, "123"))

	events, err := s.auditStore.ListByContact(s.ctx, "123")
	s.Require().NoError(err)
	s.Require().Len(events, 3)

	s.Equal(string(audit.EventContactAdded), events[0].Action)
	s.Equal(string(audit.EventContactUpdated), events[1].Action)
	s.Equal([]string{"phone"}, events[1].Fields)
	s.Equal(string(audit.EventContactDeleted), events[2].Action)
	for _, ev := range events {
		s.Equal("req-1", ev.RequestID)
		s.Equal(fixed, ev.Timestamp)
		s.Equal(audit.CategoryCompliance, ev.Category)
	}
	s.Contains(s.logs.String(), "log_type=audit")
}

// TestConcurrentAccess verifies the uniqueness invariant holds when callers
// share one service across goroutines.
func (s *ContactServiceSuite) TestConcurrentAccess() {
	const workers = 16
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := models.NewContact("shared", fmt.Sprintf("W%d", i), "", "5551234567", "")
			if err != nil {
				results <- false
				return
			}
			results <- s.service.AddContact(s.ctx, c)
		}()
	}
	wg.Wait()
	close(results)

	added := 0
	for ok := range results {
		if ok {
			added++
		}
	}
	s.Equal(1, added)
	s.Equal(1, s.service.Count(s.ctx))
	s.InDelta(1, testutil.ToFloat64(s.metrics.ContactsStored), 0)
}
