package dto

type AuditFilterDTO struct {
	Resource string `query:"resource" validate:"omitempty,max=64"`
	ActorID  string `query:"actor_id" validate:"omitempty,max=64"`
	Outcome  string `query:"outcome" validate:"omitempty,oneof=ok failed"`
}
