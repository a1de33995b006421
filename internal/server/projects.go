package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"studyboard/internal/access"
	"studyboard/internal/domain"
	"studyboard/internal/engine"
)

// maxUploadBytes bounds multipart uploads held in memory.
const maxUploadBytes = 32 << 20

type projectPath struct {
	ProjectID string `path:"project_id"`
}

func projectInput(req ProjectRequest) engine.ProjectInput {
	return engine.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Discipline:  req.Discipline,
		DueDate:     req.DueDate,
		Status:      req.Status,
		Access:      req.Access,
	}
}

var mutationErrors = []int{
	http.StatusBadRequest,
	http.StatusUnauthorized,
	http.StatusForbidden,
	http.StatusNotFound,
	http.StatusConflict,
	http.StatusInternalServerError,
}

func registerProjects(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List visible projects, newest first",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ProjectListResponse `json:"body"`
	}, error) {
		items, err := e.Projects(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ProjectListResponse `json:"body"`
		}{Body: ProjectListResponse{Items: nonNilSlice(items)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-project",
		Method:        http.MethodPost,
		Path:          "/projects",
		Summary:       "Create project",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		Body ProjectRequest `json:"body"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		p, err := e.CreateProject(ctx, projectInput(input.Body))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}",
		Summary:     "Get project",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *projectPath) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		p, err := e.Project(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-project",
		Method:      http.MethodPut,
		Path:        "/projects/{project_id}",
		Summary:     "Replace project fields; access changes need access-settings",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		ProjectID string         `path:"project_id"`
		Body      ProjectRequest `json:"body"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		p, err := e.UpdateProject(ctx, input.ProjectID, projectInput(input.Body))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-project-status",
		Method:      http.MethodPatch,
		Path:        "/projects/{project_id}/status",
		Summary:     "Update project status",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		ProjectID string               `path:"project_id"`
		Body      ProjectStatusRequest `json:"body"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		p, err := e.SetProjectStatus(ctx, input.ProjectID, input.Body.Status)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-project",
		Method:        http.MethodDelete,
		Path:          "/projects/{project_id}",
		Summary:       "Delete project",
		DefaultStatus: http.StatusNoContent,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *projectPath) (*struct{}, error) {
		if err := e.DeleteProject(ctx, input.ProjectID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "project-activities",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}/activities",
		Summary:     "Activities attached to the project, pinned first",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *projectPath) (*struct {
		Body ActivityListResponse `json:"body"`
	}, error) {
		items, err := e.ProjectActivities(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActivityListResponse `json:"body"`
		}{Body: ActivityListResponse{Items: nonNilSlice(items)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "project-board",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}/board",
		Summary:     "Kanban buckets of the project's tasks",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *projectPath) (*struct {
		Body access.Board `json:"body"`
	}, error) {
		b, err := e.Board(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body access.Board `json:"body"`
		}{Body: b}, nil
	})
}

func registerContents(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "add-task",
		Method:        http.MethodPost,
		Path:          "/projects/{project_id}/tasks",
		Summary:       "Add a kanban task",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		ProjectID string            `path:"project_id"`
		Body      CreateTaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		t, err := e.AddTask(ctx, input.ProjectID, engine.TaskInput{
			Title:       input.Body.Title,
			Responsible: input.Body.Responsible,
			Deadline:    input.Body.Deadline,
			Priority:    input.Body.Priority,
			Status:      input.Body.Status,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "move-task",
		Method:      http.MethodPatch,
		Path:        "/projects/{project_id}/tasks/{task_id}",
		Summary:     "Move a task to another column",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		ProjectID string          `path:"project_id"`
		TaskID    string          `path:"task_id"`
		Body      MoveTaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		t, err := e.MoveTask(ctx, input.ProjectID, input.TaskID, input.Body.Status)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-task",
		Method:        http.MethodDelete,
		Path:          "/projects/{project_id}/tasks/{task_id}",
		Summary:       "Delete task",
		DefaultStatus: http.StatusNoContent,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"project_id"`
		TaskID    string `path:"task_id"`
	}) (*struct{}, error) {
		if err := e.DeleteTask(ctx, input.ProjectID, input.TaskID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-checklist-item",
		Method:        http.MethodPost,
		Path:          "/projects/{project_id}/checklist",
		Summary:       "Add checklist item",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		ProjectID string               `path:"project_id"`
		Body      ChecklistItemRequest `json:"body"`
	}) (*struct {
		Body domain.ChecklistItem `json:"body"`
	}, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		item, err := e.AddChecklistItem(ctx, input.ProjectID, input.Body.Text)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ChecklistItem `json:"body"`
		}{Body: item}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-checklist-item",
		Method:      http.MethodPost,
		Path:        "/projects/{project_id}/checklist/{item_id}/toggle",
		Summary:     "Flip a checklist item",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"project_id"`
		ItemID    string `path:"item_id"`
	}) (*struct {
		Body domain.ChecklistItem `json:"body"`
	}, error) {
		item, err := e.ToggleChecklistItem(ctx, input.ProjectID, input.ItemID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ChecklistItem `json:"body"`
		}{Body: item}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-checklist-item",
		Method:        http.MethodDelete,
		Path:          "/projects/{project_id}/checklist/{item_id}",
		Summary:       "Delete checklist item",
		DefaultStatus: http.StatusNoContent,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"project_id"`
		ItemID    string `path:"item_id"`
	}) (*struct{}, error) {
		if err := e.DeleteChecklistItem(ctx, input.ProjectID, input.ItemID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

// registerDocuments mounts the binary upload and download routes on the router
// directly; only the delete goes through huma.
func registerDocuments(r chi.Router, api huma.API, e engine.Engine, basePath string) {
	base := path.Join("/", basePath, "projects/{project_id}/documents")

	r.Post(base, func(w http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)
		file, header, err := req.FormFile("file")
		if err != nil {
			respondStatusError(w, newAPIError(http.StatusBadRequest, "bad_request", "multipart field file is required", nil))
			return
		}
		defer file.Close()
		doc, err := e.UploadDocument(req.Context(), chi.URLParam(req, "project_id"), engine.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		})
		if err != nil {
			respondStatusError(w, handleError(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Location", doc.Link)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(doc)
	})

	r.Get(base+"/{document_id}/content", func(w http.ResponseWriter, req *http.Request) {
		doc, rc, err := e.DownloadDocument(req.Context(), chi.URLParam(req, "project_id"), chi.URLParam(req, "document_id"))
		if err != nil {
			respondStatusError(w, handleError(err))
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", doc.Type)
		w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(doc.Title))
		_, _ = io.Copy(w, rc)
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-document",
		Method:        http.MethodDelete,
		Path:          "/projects/{project_id}/documents/{document_id}",
		Summary:       "Delete document and its payload",
		DefaultStatus: http.StatusNoContent,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		ProjectID  string `path:"project_id"`
		DocumentID string `path:"document_id"`
	}) (*struct{}, error) {
		if err := e.DeleteDocument(ctx, input.ProjectID, input.DocumentID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}
