package server

import (
	"studyboard/internal/domain"
)

// Request payloads

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

type ProjectRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Discipline  string               `json:"discipline"`
	DueDate     domain.Date          `json:"due_date"`
	Status      domain.ProjectStatus `json:"status,omitempty" enum:"Em andamento,Em revisão,Atrasado,Finalizado"`
	Access      []string             `json:"access,omitempty"`
}

type ProjectStatusRequest struct {
	Status domain.ProjectStatus `json:"status" enum:"Em andamento,Em revisão,Atrasado,Finalizado"`
}

type CreateTaskRequest struct {
	Title       string              `json:"title"`
	Responsible string              `json:"responsible,omitempty"`
	Deadline    *domain.Date        `json:"deadline,omitempty"`
	Priority    domain.TaskPriority `json:"priority,omitempty" enum:"baixa,media,alta"`
	Status      domain.TaskStatus   `json:"status,omitempty" enum:"todo,progress,done"`
}

type MoveTaskRequest struct {
	Status domain.TaskStatus `json:"status" enum:"todo,progress,done"`
}

type ChecklistItemRequest struct {
	Text string `json:"text"`
}

type CreateActivityRequest struct {
	Discipline  string                `json:"discipline"`
	Description string                `json:"description"`
	DueDate     *domain.Date          `json:"due_date,omitempty"`
	Status      domain.ActivityStatus `json:"status,omitempty" enum:"precisa de ajuda,em andamento,resolvida"`
	ProjectID   string                `json:"project_id,omitempty"`
}

type ActivityStatusRequest struct {
	Status domain.ActivityStatus `json:"status" enum:"precisa de ajuda,em andamento,resolvida"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type AskRequest struct {
	Prompt string `json:"prompt"`
}

// Response payloads

type ActorResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	AvatarURL string      `json:"avatar_url,omitempty"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	Actor ActorResponse `json:"actor"`
}

type ActorListResponse struct {
	Items []ActorResponse `json:"items"`
}

type ProjectListResponse struct {
	Items []domain.Project `json:"items"`
}

type ActivityListResponse struct {
	Items []domain.Activity `json:"items"`
}

type SelectedActivityResponse struct {
	Activity *domain.Activity `json:"activity"`
}

type CapabilitiesResponse struct {
	ProjectID    string          `json:"project_id,omitempty"`
	Capabilities map[string]bool `json:"capabilities"`
}

type DashboardResponse struct {
	Actor           ActorResponse     `json:"actor"`
	Today           domain.Date       `json:"today"`
	ActiveProjects  []domain.Project  `json:"active_projects"`
	DailyActivities []domain.Activity `json:"daily_activities"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

func actorResponse(a domain.Actor) ActorResponse {
	return ActorResponse{
		ID:        a.ID,
		Name:      a.Name,
		Role:      a.Role,
		AvatarURL: a.AvatarURL,
	}
}

func mapActors(items []domain.Actor) []ActorResponse {
	res := make([]ActorResponse, 0, len(items))
	for _, a := range items {
		res = append(res, actorResponse(a))
	}
	return res
}

func nonNilSlice[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
