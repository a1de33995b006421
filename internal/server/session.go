package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"studyboard/internal/engine"
)

func registerSession(api huma.API, e engine.Engine, authCfg AuthConfig) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Log in and mint a session token",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body LoginRequest `json:"body"`
	}) (*struct {
		Body LoginResponse `json:"body"`
	}, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		if strings.TrimSpace(input.Body.Name) == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		actor, ok, err := e.Login(ctx, strings.TrimSpace(input.Body.Name), strings.TrimSpace(input.Body.Password))
		if err != nil {
			return nil, handleError(err)
		}
		if !ok {
			return nil, newAPIError(http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
		}
		token, err := signToken(authCfg, actor.ID, string(actor.Role), time.Now())
		if err != nil {
			return nil, newAPIError(http.StatusInternalServerError, "internal_error", err.Error(), nil)
		}
		authCfg.logger().Infof("actor %s logged in", actor.ID)
		return &struct {
			Body LoginResponse `json:"body"`
		}{Body: LoginResponse{Token: token, Actor: actorResponse(actor)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodPost,
		Path:          "/auth/logout",
		Summary:       "End the session",
		DefaultStatus: http.StatusNoContent,
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		if err := e.Logout(ctx); err != nil {
			return nil, handleError(err)
		}
		if p, ok := principalFromContext(ctx); ok {
			authCfg.logger().Infof("actor %s logged out", p.ActorID)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Current actor",
		Errors: []int{
			http.StatusUnauthorized,
		},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ActorResponse `json:"body"`
	}, error) {
		actor, err := e.Me()
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActorResponse `json:"body"`
		}{Body: actorResponse(actor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPatch,
		Path:        "/me",
		Summary:     "Rename the current actor or change the avatar",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusConflict,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body UpdateProfileRequest `json:"body"`
	}) (*struct {
		Body ActorResponse `json:"body"`
	}, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		actor, err := e.UpdateProfile(ctx, input.Body.Name, input.Body.AvatarURL)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActorResponse `json:"body"`
		}{Body: actorResponse(actor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "update-password",
		Method:        http.MethodPut,
		Path:          "/me/password",
		Summary:       "Change the current actor's password",
		DefaultStatus: http.StatusNoContent,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body UpdatePasswordRequest `json:"body"`
	}) (*struct{}, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		if err := e.UpdatePassword(ctx, input.Body.Password); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-actors",
		Method:      http.MethodGet,
		Path:        "/actors",
		Summary:     "List known actors",
		Errors: []int{
			http.StatusUnauthorized,
		},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ActorListResponse `json:"body"`
	}, error) {
		actors, err := e.Directory()
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActorListResponse `json:"body"`
		}{Body: ActorListResponse{Items: mapActors(actors)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "capabilities",
		Method:      http.MethodGet,
		Path:        "/capabilities",
		Summary:     "Evaluate every action for the current actor",
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID string `query:"project_id"`
	}) (*struct {
		Body CapabilitiesResponse `json:"body"`
	}, error) {
		caps, err := e.Capabilities(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		out := make(map[string]bool, len(caps))
		for action, ok := range caps {
			out[string(action)] = ok
		}
		return &struct {
			Body CapabilitiesResponse `json:"body"`
		}{Body: CapabilitiesResponse{ProjectID: input.ProjectID, Capabilities: out}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "Active projects and today's activities",
		Errors: []int{
			http.StatusUnauthorized,
		},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body DashboardResponse `json:"body"`
	}, error) {
		d, err := e.Dashboard(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DashboardResponse `json:"body"`
		}{Body: DashboardResponse{
			Actor:           actorResponse(d.Actor),
			Today:           d.Today,
			ActiveProjects:  nonNilSlice(d.ActiveProjects),
			DailyActivities: nonNilSlice(d.DailyActivities),
		}}, nil
	})
}
