package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/docstore"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/maxaizer/jobmatch/internal/events"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"regexp"
	"strings"
	"time"
)

const (
	usersCollection           = "users"
	studentsCollection        = "students"
	recruitersCollection      = "recruiters"
	studentProfilesCollection = "student_profiles"
	userDetailsDoc            = "user_details"

	maxRecentSearches = 10
)

// profileLocation is one place a profile document may live. Profiles were written under
// different layouts over time; the lists below are checked in order and the first hit wins.
type profileLocation struct {
	path func(id string) docstore.Path
	role entities.Role
}

func flatUser(id string) docstore.Path { return docstore.Doc(usersCollection, id) }

func nestedDetails(role entities.Role) func(id string) docstore.Path {
	return func(id string) docstore.Path {
		return docstore.Doc(usersCollection, string(role), id, userDetailsDoc)
	}
}

func inCollection(collection string) func(id string) docstore.Path {
	return func(id string) docstore.Path { return docstore.Doc(collection, id) }
}

var studentLocations = []profileLocation{
	{path: flatUser, role: entities.RoleStudent},
	{path: inCollection(studentsCollection), role: entities.RoleStudent},
	{path: nestedDetails(entities.RoleStudent), role: entities.RoleStudent},
	{path: inCollection(studentProfilesCollection), role: entities.RoleStudent},
}

var userLocations = []profileLocation{
	{path: flatUser, role: entities.RoleStudent},
	{path: nestedDetails(entities.RoleStudent), role: entities.RoleStudent},
	{path: inCollection(studentsCollection), role: entities.RoleStudent},
	{path: nestedDetails(entities.RoleRecruiter), role: entities.RoleRecruiter},
	{path: inCollection(recruitersCollection), role: entities.RoleRecruiter},
}

// Fields the generic section update must not touch.
var protectedSections = []string{"id", entities.RoleField, "createdAt", "updatedAt", "savedJobs", "appliedJobs"}

var sectionPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

type identityObserver interface {
	CurrentIdentity(ctx context.Context) (entities.Identity, bool)
}

type ResolvedProfile struct {
	Ref     docstore.Path
	IsNew   bool
	Profile entities.Profile
}

type ProfileResolver struct {
	store    docstore.Store
	identity identityObserver
	bus      EventBus.Bus
	now      func() time.Time
}

func NewProfileResolver(store docstore.Store, identity identityObserver, bus EventBus.Bus) *ProfileResolver {
	return &ProfileResolver{store: store, identity: identity, bus: bus, now: time.Now}
}

func (r *ProfileResolver) find(ctx context.Context, id string, locations []profileLocation) (*docstore.Snapshot, profileLocation, bool) {
	for _, location := range locations {
		path := location.path(id)
		snap, err := r.store.Get(ctx, path)
		if err == nil {
			return snap, location, true
		}
		if !docstore.IsNotFound(err) {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).
				Warnf("failed to check profile at %s: %v", path, err)
		}
	}
	return nil, profileLocation{}, false
}

// FindOrCreateStudent locates the student's profile, creating a minimal one when the user
// has none yet. A read may therefore write.
func (r *ProfileResolver) FindOrCreateStudent(ctx context.Context, id string) (*ResolvedProfile, error) {
	if id == "" {
		return nil, ErrMissingUserID
	}

	if snap, location, ok := r.find(ctx, id, studentLocations); ok {
		return &ResolvedProfile{
			Ref:     snap.Path,
			Profile: entities.NewProfile(id, snap.Data, location.role),
		}, nil
	}

	now := r.now()
	data := docstore.Data{
		"fullName":         "",
		"email":            "",
		entities.RoleField: string(entities.RoleStudent),
		"savedJobs":        []any{},
		"appliedJobs":      []any{},
		"createdAt":        now,
		"updatedAt":        now,
	}

	ref := flatUser(id)
	if err := r.store.Merge(ctx, ref, data); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).
			Errorf("failed to create student profile at %s: %v", ref, err)

		ref = docstore.Doc(studentsCollection, id)
		if err = r.store.Merge(ctx, ref, data); err != nil {
			return nil, failed("failed to create student profile", err)
		}
	}

	log.Infof("created student profile %s", ref)
	r.bus.Publish(events.ProfileCreatedTopic, events.ProfileCreated{
		UserID:   id,
		Role:     string(entities.RoleStudent),
		Location: ref.String(),
	})

	return &ResolvedProfile{
		Ref:     ref,
		IsNew:   true,
		Profile: entities.NewProfile(id, data, entities.RoleStudent),
	}, nil
}

// GetUserDetails returns the profile of a user of either role. When the user has no profile
// anywhere and is the signed-in user, a default one is created from the session identity.
func (r *ProfileResolver) GetUserDetails(ctx context.Context, id string) (entities.Profile, error) {
	if id == "" {
		return entities.Profile{}, ErrMissingUserID
	}

	if snap, location, ok := r.find(ctx, id, userLocations); ok {
		return entities.NewProfile(id, snap.Data, location.role), nil
	}

	current, ok := r.identity.CurrentIdentity(ctx)
	if !ok || current.UID != id {
		return entities.Profile{}, ErrProfileNotFound
	}

	now := r.now()
	data := docstore.Data{
		"id":               id,
		"email":            current.Email,
		"fullName":         current.DisplayName,
		entities.RoleField: string(entities.RoleStudent),
		"createdAt":        now,
		"updatedAt":        now,
	}
	ref := flatUser(id)
	if err := r.store.Merge(ctx, ref, data); err != nil {
		return entities.Profile{}, failed("failed to create user profile", err)
	}

	log.Infof("created default profile for %s", id)
	r.bus.Publish(events.ProfileCreatedTopic, events.ProfileCreated{
		UserID:   id,
		Role:     string(entities.RoleStudent),
		Location: ref.String(),
	})
	return entities.NewProfile(id, data, entities.RoleStudent), nil
}

func profileDefaults() map[string]any {
	return map[string]any{
		"fullName":     "",
		"email":        "",
		"title":        "",
		"university":   "",
		"about":        "",
		"skills":       []any{},
		"projects":     []any{},
		"experience":   []any{},
		"connections":  map[string]any{"followers": 0, "following": 0},
		"achievements": []any{},
		"socialLinks":  map[string]any{},
	}
}

var imageDefaults = map[string]any{
	"avatar":     "/placeholder.svg?height=200&width=200",
	"coverImage": "/placeholder.svg?height=400&width=1200",
}

// GetUserProfile returns the profile page model with every section present.
func (r *ProfileResolver) GetUserProfile(ctx context.Context, id string) (entities.ProfileView, error) {
	resolved, err := r.FindOrCreateStudent(ctx, id)
	if err != nil {
		return nil, failed("failed to fetch user profile", err)
	}

	now := r.now()
	view := entities.ProfileView(profileDefaults())
	if resolved.IsNew {
		view["createdAt"] = now
		view["updatedAt"] = now
		return view, nil
	}

	profile := resolved.Profile
	for key := range lo.Assign(profileDefaults(), imageDefaults) {
		if profile.Has(key) {
			view[key] = profile.Data[key]
		} else if image, ok := imageDefaults[key]; ok {
			view[key] = image
		}
	}
	view["createdAt"] = timeOr(profile, "createdAt", now)
	view["updatedAt"] = timeOr(profile, "updatedAt", now)
	return view, nil
}

// UpdateUserProfile overwrites one top-level section of the profile.
func (r *ProfileResolver) UpdateUserProfile(ctx context.Context, id, section string, value any) error {
	if !sectionPattern.MatchString(section) || lo.Contains(protectedSections, section) {
		return ErrInvalidSection
	}

	resolved, err := r.FindOrCreateStudent(ctx, id)
	if err != nil {
		return failed("failed to update profile", err)
	}

	err = r.store.Update(ctx, resolved.Ref,
		docstore.Update{Field: section, Value: value},
		docstore.Update{Field: "updatedAt", Value: r.now()},
	)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).
			Errorf("failed to update profile section %s of %s: %v", section, id, err)
		return failed("failed to update profile", err)
	}
	return nil
}

// GetStudentJobPreferences never fails: on error the lists are reported empty.
func (r *ProfileResolver) GetStudentJobPreferences(ctx context.Context, id string) entities.StudentJobPreferences {
	resolved, err := r.FindOrCreateStudent(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch job preferences of %s: %v", id, err)
		return entities.StudentJobPreferences{SavedJobs: []string{}, AppliedJobs: []string{}, RecentSearches: []string{}}
	}

	return entities.StudentJobPreferences{
		SavedJobs:      listValues(resolved.Profile.Data["savedJobs"]),
		AppliedJobs:    listValues(resolved.Profile.Data["appliedJobs"]),
		RecentSearches: listValues(resolved.Profile.Data["recentSearches"]),
	}
}

// RecordRecentSearch puts the query at the head of the student's recent searches.
func (r *ProfileResolver) RecordRecentSearch(ctx context.Context, id, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	resolved, err := r.FindOrCreateStudent(ctx, id)
	if err != nil {
		return failed("failed to record search", err)
	}

	recent := append([]string{query}, lo.Without(listValues(resolved.Profile.Data["recentSearches"]), query)...)
	if len(recent) > maxRecentSearches {
		recent = recent[:maxRecentSearches]
	}

	err = r.store.Update(ctx, resolved.Ref,
		docstore.Update{Field: "recentSearches", Value: toAny(recent)},
		docstore.Update{Field: "updatedAt", Value: r.now()},
	)
	return failed("failed to record search", err)
}

// GetAllStudents lists every student with a flat profile, whichever way its role was spelled.
// Details kept at the legacy nested location are merged over the flat document.
func (r *ProfileResolver) GetAllStudents(ctx context.Context) ([]entities.Student, error) {
	var snapshots []docstore.Snapshot
	for _, spelling := range entities.RoleStudent.Spellings() {
		found, err := r.store.Query(ctx, docstore.Collection(usersCollection).Where(entities.RoleField, spelling))
		if err != nil {
			return nil, failed("failed to fetch students", err)
		}
		snapshots = append(snapshots, found...)
	}
	snapshots = lo.UniqBy(snapshots, func(s docstore.Snapshot) string { return s.Path.ID() })

	now := r.now()
	students := make([]entities.Student, 0, len(snapshots))
	for _, snap := range snapshots {
		id := snap.Path.ID()
		data := map[string]any(snap.Data)

		details, err := r.store.Get(ctx, nestedDetails(entities.RoleStudent)(id))
		switch {
		case err == nil:
			data = lo.Assign(data, map[string]any(details.Data))
		case !docstore.IsNotFound(err):
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).
				Warnf("failed to fetch details of student %s: %v", id, err)
		}

		students = append(students, toStudent(entities.NewProfile(id, data, entities.RoleStudent), now))
	}

	log.Debugf("found %d students", len(students))
	return students, nil
}

// GetStudentsByIDs resolves each student independently; ids that fail are left out.
func (r *ProfileResolver) GetStudentsByIDs(ctx context.Context, ids []string) ([]entities.Student, error) {
	now := r.now()
	students := make([]entities.Student, 0, len(ids))

	for _, id := range lo.Uniq(ids) {
		if err := ctx.Err(); err != nil {
			return nil, failed("failed to fetch student information", err)
		}

		resolved, err := r.FindOrCreateStudent(ctx, id)
		if err != nil {
			log.Warnf("failed to fetch student %s: %v", id, err)
			continue
		}
		students = append(students, toStudent(resolved.Profile, now))
	}

	log.Debugf("retrieved %d out of %d students", len(students), len(ids))
	return students, nil
}

func toStudent(profile entities.Profile, now time.Time) entities.Student {
	skills := profile.Data["skills"]
	if skills == nil {
		skills = []any{}
	}

	return entities.Student{
		ID:         profile.ID,
		FullName:   lo.Ternary(profile.String("fullName") != "", profile.String("fullName"), "Unnamed Student"),
		Email:      profile.String("email"),
		University: profile.String("university"),
		Skills:     skills,
		Details:    profile.Data,
		MatchScore: CalculateMatchScore(profile, now),
		CreatedAt:  timeOr(profile, "createdAt", now),
		UpdatedAt:  timeOr(profile, "updatedAt", now),
	}
}

func timeOr(profile entities.Profile, key string, fallback time.Time) time.Time {
	if t, ok := profile.Time(key); ok {
		return t
	}
	return fallback
}

// listValues reads a list of ids. A lone string left by older writers counts as a one-item list.
func listValues(value any) []string {
	if s, ok := value.(string); ok {
		if s == "" {
			return []string{}
		}
		return []string{s}
	}
	return entities.ToStrings(value)
}

func toAny(values []string) []any {
	return lo.Map(values, func(v string, _ int) any { return v })
}
