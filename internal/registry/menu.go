package registry

// MenuItem - пункт навигации. Пустой RequiredPermission - пункт виден всем.
// Цель задаёт одно из ResourceKey/Action; у групп цели нет.
type MenuItem struct {
	Key                string     `json:"key"`
	Label              string     `json:"label"`
	Icon               string     `json:"icon,omitempty"`
	ResourceKey        string     `json:"resource,omitempty"`
	Action             string     `json:"action,omitempty"`
	RequiredPermission []string   `json:"required_permission,omitempty"`
	Children           []MenuItem `json:"children,omitempty"`
}
