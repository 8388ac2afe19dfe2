package services

import (
	"context"
	"encoding/json"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/docstore"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/maxaizer/jobmatch/internal/events"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"time"
)

const registrationFailed = "an error occurred during registration"

type accountCreator interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
}

type Registration struct {
	accounts accountCreator
	store    docstore.Store
	bus      EventBus.Bus
	now      func() time.Time
}

func NewRegistration(accounts accountCreator, store docstore.Store, bus EventBus.Bus) *Registration {
	return &Registration{accounts: accounts, store: store, bus: bus, now: time.Now}
}

func (r *Registration) RegisterStudent(ctx context.Context, email, password string, details entities.StudentDetails) (string, error) {
	if details.Email == "" {
		details.Email = email
	}
	return r.register(ctx, email, password, details.FullName, entities.RoleStudent, details, docstore.Data{
		"savedJobs":   []any{},
		"appliedJobs": []any{},
	})
}

func (r *Registration) RegisterRecruiter(ctx context.Context, email, password string, details entities.RecruiterDetails) (string, error) {
	if details.Email == "" {
		details.Email = email
	}
	return r.register(ctx, email, password, details.FullName, entities.RoleRecruiter, details, docstore.Data{})
}

// register creates the account and writes the profile to the user's flat document.
func (r *Registration) register(ctx context.Context, email, password, displayName string, role entities.Role,
	details any, extra docstore.Data) (string, error) {

	fields, err := toData(details)
	if err != nil {
		return "", failed(registrationFailed, err)
	}

	uid, err := r.accounts.CreateUser(ctx, email, password, displayName)
	if err != nil {
		return "", failed(registrationFailed, err)
	}

	now := r.now()
	data := lo.Assign(fields, extra, docstore.Data{
		entities.RoleField: string(role),
		"createdAt":        now,
		"updatedAt":        now,
	})

	ref := flatUser(uid)
	if err = r.store.Set(ctx, ref, data); err != nil {
		log.WithFields(log.Fields{logger.ErrorTypeField: logger.ErrorTypeStore, "uid": uid}).
			Errorf("orphan account: failed to write profile of new %s %s: %v", role, uid, err)
		return "", failed(registrationFailed, err)
	}

	r.bus.Publish(events.ProfileCreatedTopic, events.ProfileCreated{UserID: uid, Role: string(role), Location: ref.String()})
	log.Infof("registered %s %s", role, uid)
	return uid, nil
}

func toData(v any) (docstore.Data, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	data := docstore.Data{}
	err = json.Unmarshal(raw, &data)
	return data, err
}
