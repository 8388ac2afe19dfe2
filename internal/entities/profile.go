package entities

import (
	"encoding/json"
	"github.com/samber/lo"
	"reflect"
	"time"
)

// Profile is a user profile document as stored. The store is schemaless and profiles
// were written by several generations of clients, so fields are read through accessors
// instead of being decoded into a fixed struct.
type Profile struct {
	ID   string
	Role Role
	Data map[string]any
}

func NewProfile(id string, data map[string]any, defaultRole Role) Profile {
	if data == nil {
		data = map[string]any{}
	}
	role := defaultRole
	if raw, ok := data[RoleField].(string); ok {
		if parsed, err := ParseRole(raw); err == nil {
			role = parsed
		}
	}
	return Profile{ID: id, Role: role, Data: data}
}

func (p Profile) Has(key string) bool {
	return IsPresent(p.Data[key])
}

func (p Profile) String(key string) string {
	s, _ := p.Data[key].(string)
	return s
}

func (p Profile) Strings(key string) []string {
	return ToStrings(p.Data[key])
}

func (p Profile) Len(key string) int {
	v := reflect.ValueOf(p.Data[key])
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len()
	default:
		return 0
	}
}

func (p Profile) Nested(key, sub string) any {
	switch m := p.Data[key].(type) {
	case map[string]any:
		return m[sub]
	case map[string]string:
		return m[sub]
	default:
		return nil
	}
}

func (p Profile) Time(key string) (time.Time, bool) {
	return ParseTime(p.Data[key])
}

// MarshalJSON flattens the document the way clients expect it: raw fields plus id and role.
func (p Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(lo.Assign(p.Data, map[string]any{
		"id":      p.ID,
		RoleField: string(p.Role),
	}))
}

// IsPresent reports whether a document value counts as filled in: non-empty strings,
// non-empty collections, true, non-zero numbers and any other non-nil value.
func IsPresent(value any) bool {
	if value == nil {
		return false
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return v.Len() > 0
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0
	case reflect.Pointer, reflect.Interface:
		return !v.IsNil()
	default:
		return true
	}
}

func ToStrings(value any) []string {
	switch list := value.(type) {
	case []string:
		return list
	case []any:
		return lo.FilterMap(list, func(item any, _ int) (string, bool) {
			s, ok := item.(string)
			return s, ok
		})
	default:
		return []string{}
	}
}

// ParseTime accepts the representations a timestamp takes in documents: native times
// from the store client and RFC3339 strings from JSON-backed stores.
func ParseTime(value any) (time.Time, bool) {
	switch t := value.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

type Skill struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

type PortfolioLinks struct {
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
	Behance  string `json:"behance,omitempty"`
	Dribbble string `json:"dribbble,omitempty"`
}

type NotificationPreferences struct {
	Notifications bool `json:"notifications"`
	Updates       bool `json:"updates"`
}

type StudentDetails struct {
	FullName       string                  `json:"fullName"`
	Email          string                  `json:"email"`
	University     string                  `json:"university"`
	Degree         string                  `json:"degree"`
	Year           string                  `json:"year"`
	Coursework     string                  `json:"coursework,omitempty"`
	Certifications string                  `json:"certifications,omitempty"`
	Skills         []Skill                 `json:"skills"`
	Interests      []string                `json:"interests"`
	PortfolioLinks *PortfolioLinks         `json:"portfolioLinks,omitempty"`
	Experience     string                  `json:"experience,omitempty"`
	JobType        string                  `json:"jobType"`
	Preferences    NotificationPreferences `json:"preferences"`
}

type RecruiterDetails struct {
	FullName           string   `json:"fullName"`
	Email              string   `json:"email"`
	JobTitle           string   `json:"jobTitle"`
	PhoneNumber        string   `json:"phoneNumber"`
	CompanyName        string   `json:"companyName"`
	CompanyWebsite     string   `json:"companyWebsite"`
	Industry           string   `json:"industry"`
	CompanySize        string   `json:"companySize"`
	CompanyDescription string   `json:"companyDescription"`
	CompanyLocation    string   `json:"companyLocation"`
	HiringRoles        []string `json:"hiringRoles"`
	SkillsNeeded       []Skill  `json:"skillsNeeded"`
	HiringTimeline     string   `json:"hiringTimeline"`
	EmploymentTypes    []string `json:"employmentTypes"`
	RemoteOptions      []string `json:"remoteOptions"`
	CompanyValues      []string `json:"companyValues"`
	Benefits           []string `json:"benefits"`
	WorkEnvironment    string   `json:"workEnvironment"`
	TeamStructure      string   `json:"teamStructure"`
	LinkedinProfile    string   `json:"linkedinProfile"`
	HowHeard           string   `json:"howHeard"`
	MarketingConsent   bool     `json:"marketingConsent"`
	TermsAgreed        bool     `json:"termsAgreed"`
}

// Student is a student profile prepared for recruiters browsing applicants.
type Student struct {
	ID         string         `json:"id"`
	FullName   string         `json:"fullName"`
	Email      string         `json:"email"`
	University string         `json:"university"`
	Skills     any            `json:"skills"`
	Details    map[string]any `json:"details"`
	MatchScore int            `json:"matchScore"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type StudentJobPreferences struct {
	SavedJobs      []string `json:"savedJobs"`
	AppliedJobs    []string `json:"appliedJobs"`
	RecentSearches []string `json:"recentSearches"`
}

// ProfileView is the public profile page model, every section filled with a default.
type ProfileView map[string]any
