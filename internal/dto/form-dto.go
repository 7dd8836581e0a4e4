package dto

type OpenFormDTO struct {
	Resource string         `json:"resource" validate:"required"`
	RecordID string         `json:"record_id" validate:"omitempty,max=64"`
	Record   map[string]any `json:"record"`
}

type SetFieldDTO struct {
	Value any `json:"value"`
}

type HierarchyFormDTO struct {
	RecordID string `json:"record_id" validate:"omitempty,max=64"`
}
