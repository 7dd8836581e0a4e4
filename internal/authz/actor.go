package authz

import "sort"

type Profile struct {
	GovernorateID string `json:"governorate_id,omitempty"`
	OfficeID      string `json:"office_id,omitempty"`
	FullName      string `json:"full_name,omitempty"`
}

// Actor - неизменяемый снимок сессии. Новый снимок строится при логине
// или обновлении токена, существующий никогда не правится.
type Actor struct {
	userID      string
	permissions map[string]struct{}
	roles       []string
	profile     Profile
}

func NewActor(userID string, permissions []string, roles []string, profile Profile) *Actor {
	set := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		if p == "" {
			continue
		}
		set[p] = struct{}{}
	}
	return &Actor{
		userID:      userID,
		permissions: set,
		roles:       append([]string(nil), roles...),
		profile:     profile,
	}
}

func (a *Actor) UserID() string {
	if a == nil {
		return ""
	}
	return a.userID
}

func (a *Actor) Profile() Profile {
	if a == nil {
		return Profile{}
	}
	return a.profile
}

func (a *Actor) Roles() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.roles...)
}

// Permissions возвращает отсортированную копию набора кодов.
func (a *Actor) Permissions() []string {
	if a == nil {
		return nil
	}
	out := make([]string, 0, len(a.permissions))
	for p := range a.permissions {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
