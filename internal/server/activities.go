package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"studyboard/internal/domain"
	"studyboard/internal/engine"
)

type activityPath struct {
	ActivityID string `path:"activity_id"`
}

type activityBody struct {
	Body domain.Activity `json:"body"`
}

func registerActivities(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-activities",
		Method:      http.MethodGet,
		Path:        "/activities",
		Summary:     "List visible activities, pinned first",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ActivityListResponse `json:"body"`
	}, error) {
		items, err := e.Activities(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActivityListResponse `json:"body"`
		}{Body: ActivityListResponse{Items: nonNilSlice(items)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "daily-activities",
		Method:      http.MethodGet,
		Path:        "/activities/today",
		Summary:     "Visible activities due today",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ActivityListResponse `json:"body"`
	}, error) {
		items, err := e.DailyActivities(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActivityListResponse `json:"body"`
		}{Body: ActivityListResponse{Items: nonNilSlice(items)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "selected-activity",
		Method:      http.MethodGet,
		Path:        "/activities/selected",
		Summary:     "Focused activity, falling back to the first pinned or visible one",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body SelectedActivityResponse `json:"body"`
	}, error) {
		a, ok, err := e.SelectedActivity(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		resp := SelectedActivityResponse{}
		if ok {
			resp.Activity = &a
		}
		return &struct {
			Body SelectedActivityResponse `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-activity",
		Method:        http.MethodPost,
		Path:          "/activities",
		Summary:       "Post an activity",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		Body CreateActivityRequest `json:"body"`
	}) (*activityBody, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		a, err := e.CreateActivity(ctx, engine.ActivityInput{
			Discipline:  input.Body.Discipline,
			Description: input.Body.Description,
			DueDate:     input.Body.DueDate,
			Status:      input.Body.Status,
			ProjectID:   input.Body.ProjectID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &activityBody{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-activity",
		Method:      http.MethodGet,
		Path:        "/activities/{activity_id}",
		Summary:     "Get activity",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *activityPath) (*activityBody, error) {
		a, err := e.Activity(ctx, input.ActivityID)
		if err != nil {
			return nil, handleError(err)
		}
		return &activityBody{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "select-activity",
		Method:      http.MethodPost,
		Path:        "/activities/{activity_id}/select",
		Summary:     "Focus an activity",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *activityPath) (*activityBody, error) {
		a, err := e.SelectActivity(ctx, input.ActivityID)
		if err != nil {
			return nil, handleError(err)
		}
		return &activityBody{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-pin",
		Method:      http.MethodPost,
		Path:        "/activities/{activity_id}/pin",
		Summary:     "Flip the pinned flag",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *activityPath) (*activityBody, error) {
		a, err := e.TogglePin(ctx, input.ActivityID)
		if err != nil {
			return nil, handleError(err)
		}
		return &activityBody{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-comment",
		Method:        http.MethodPost,
		Path:          "/activities/{activity_id}/comments",
		Summary:       "Comment on an activity",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		ActivityID string         `path:"activity_id"`
		Body       CommentRequest `json:"body"`
	}) (*activityBody, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		a, err := e.AddComment(ctx, input.ActivityID, input.Body.Text)
		if err != nil {
			return nil, handleError(err)
		}
		return &activityBody{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-activity-status",
		Method:      http.MethodPatch,
		Path:        "/activities/{activity_id}/status",
		Summary:     "Update activity status",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		ActivityID string                `path:"activity_id"`
		Body       ActivityStatusRequest `json:"body"`
	}) (*activityBody, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		a, err := e.SetActivityStatus(ctx, input.ActivityID, input.Body.Status)
		if err != nil {
			return nil, handleError(err)
		}
		return &activityBody{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-activity",
		Method:        http.MethodDelete,
		Path:          "/activities/{activity_id}",
		Summary:       "Delete activity",
		DefaultStatus: http.StatusNoContent,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *activityPath) (*struct{}, error) {
		if err := e.DeleteActivity(ctx, input.ActivityID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerAssistant(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "ask-assistant",
		Method:      http.MethodPost,
		Path:        "/assistant",
		Summary:     "Ask the study assistant; failures come back as fallback text",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body AskRequest `json:"body"`
	}) (*struct {
		Body AskResponse `json:"body"`
	}, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		if strings.TrimSpace(input.Body.Prompt) == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "prompt is required", nil)
		}
		answer, err := e.Ask(ctx, input.Body.Prompt)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body AskResponse `json:"body"`
		}{Body: AskResponse{Answer: answer}}, nil
	})
}
