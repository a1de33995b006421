package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"studyboard/internal/access"
	"studyboard/internal/blob"
	"studyboard/internal/domain"
	"studyboard/internal/store"
	"studyboard/internal/validation"
)

// TaskInput carries the fields of a new kanban task.
type TaskInput struct {
	Title       string
	Responsible string
	Deadline    *domain.Date
	Priority    domain.TaskPriority
	Status      domain.TaskStatus
}

// AddTask appends a task to the project board. Status defaults to todo and priority to media.
func (e Engine) AddTask(ctx context.Context, projectID string, in TaskInput) (domain.Task, error) {
	task := domain.Task{
		ID:          e.newID(),
		Title:       strings.TrimSpace(in.Title),
		Responsible: strings.TrimSpace(in.Responsible),
		Deadline:    in.Deadline,
		Priority:    in.Priority,
		Status:      in.Status,
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.Status == "" {
		task.Status = domain.TaskTodo
	}
	_, err := e.mutateProject("add-task", projectID, access.EditProjectContents, func(actor domain.Actor, p *domain.Project) error {
		if task.Responsible == "" {
			task.Responsible = actor.Name
		}
		p.Tasks = append(p.Tasks, task)
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// MoveTask changes a task's status column.
func (e Engine) MoveTask(ctx context.Context, projectID, taskID string, status domain.TaskStatus) (domain.Task, error) {
	var moved domain.Task
	_, err := e.mutateProject("move-task", projectID, access.EditProjectContents, func(_ domain.Actor, p *domain.Project) error {
		for i := range p.Tasks {
			if p.Tasks[i].ID == taskID {
				p.Tasks[i].Status = status
				moved = p.Tasks[i]
				return nil
			}
		}
		return fmt.Errorf("task %s: %w", taskID, store.ErrNotFound)
	})
	if err != nil {
		return domain.Task{}, err
	}
	return moved, nil
}

func (e Engine) DeleteTask(ctx context.Context, projectID, taskID string) error {
	_, err := e.mutateProject("delete-task", projectID, access.EditProjectContents, func(_ domain.Actor, p *domain.Project) error {
		for i := range p.Tasks {
			if p.Tasks[i].ID == taskID {
				p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("task %s: %w", taskID, store.ErrNotFound)
	})
	return err
}

// AddChecklistItem appends an unchecked item. Text is trimmed and must not be empty.
func (e Engine) AddChecklistItem(ctx context.Context, projectID, text string) (domain.ChecklistItem, error) {
	item := domain.ChecklistItem{ID: e.newID(), Text: strings.TrimSpace(text)}
	if item.Text == "" {
		return domain.ChecklistItem{}, validation.Required("text")
	}
	_, err := e.mutateProject("add-checklist-item", projectID, access.EditProjectContents, func(_ domain.Actor, p *domain.Project) error {
		p.Checklist = append(p.Checklist, item)
		return nil
	})
	if err != nil {
		return domain.ChecklistItem{}, err
	}
	return item, nil
}

// ToggleChecklistItem flips an item's completed flag.
func (e Engine) ToggleChecklistItem(ctx context.Context, projectID, itemID string) (domain.ChecklistItem, error) {
	var toggled domain.ChecklistItem
	_, err := e.mutateProject("toggle-checklist-item", projectID, access.EditProjectContents, func(_ domain.Actor, p *domain.Project) error {
		for i := range p.Checklist {
			if p.Checklist[i].ID == itemID {
				p.Checklist[i].Completed = !p.Checklist[i].Completed
				toggled = p.Checklist[i]
				return nil
			}
		}
		return fmt.Errorf("checklist item %s: %w", itemID, store.ErrNotFound)
	})
	if err != nil {
		return domain.ChecklistItem{}, err
	}
	return toggled, nil
}

func (e Engine) DeleteChecklistItem(ctx context.Context, projectID, itemID string) error {
	_, err := e.mutateProject("delete-checklist-item", projectID, access.EditProjectContents, func(_ domain.Actor, p *domain.Project) error {
		for i := range p.Checklist {
			if p.Checklist[i].ID == itemID {
				p.Checklist = append(p.Checklist[:i], p.Checklist[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("checklist item %s: %w", itemID, store.ErrNotFound)
	})
	return err
}

// Upload is a user-provided file.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// DocumentLink is the retrieval path for an uploaded document.
func DocumentLink(projectID, documentID string) string {
	return "/v0/projects/" + projectID + "/documents/" + documentID + "/content"
}

func blobKey(projectID, documentID string) string {
	return "projects/" + projectID + "/documents/" + documentID
}

// UploadDocument stores the payload and lists it on the project, attributed to the current actor.
// The actor is authorized before the payload is read.
func (e Engine) UploadDocument(ctx context.Context, projectID string, up Upload) (domain.Document, error) {
	actor, err := e.actor()
	if err != nil {
		return domain.Document{}, err
	}
	if _, err := e.visibleProject(actor, projectID); err != nil {
		e.record("upload-document", err)
		return domain.Document{}, err
	}
	if err := e.authorize(actor, access.EditProjectContents); err != nil {
		e.record("upload-document", err)
		return domain.Document{}, err
	}
	title := strings.TrimSpace(path.Base(strings.ReplaceAll(up.Filename, "\\", "/")))
	if title == "" || title == "." || title == "/" {
		return domain.Document{}, validation.Required("filename")
	}
	if up.Body == nil {
		return domain.Document{}, validation.Required("file")
	}
	data, err := io.ReadAll(up.Body)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read upload: %w", err)
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	doc := domain.Document{
		ID:    e.newID(),
		Title: title,
		Type:  contentType,
	}
	doc.Link = DocumentLink(projectID, doc.ID)
	doc.BlobKey = blobKey(projectID, doc.ID)

	var stored bool
	_, err = e.mutateProject("upload-document", projectID, access.EditProjectContents, func(actor domain.Actor, p *domain.Project) error {
		doc.Responsible = actor.Name
		if _, err := e.Blobs.Put(ctx, doc.BlobKey, bytes.NewReader(data), blob.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"title": title, "uploaded-by": actor.ID},
		}); err != nil {
			return fmt.Errorf("store attachment: %w", err)
		}
		stored = true
		p.Documents = append(p.Documents, doc)
		return nil
	})
	if err != nil {
		if stored {
			if _, derr := e.Blobs.Delete(ctx, doc.BlobKey); derr != nil {
				e.Logger.Warnf("drop orphan attachment %s: %v", doc.BlobKey, derr)
			}
		}
		return domain.Document{}, err
	}
	return doc, nil
}

// DownloadDocument opens a document's payload. Documents without one return ErrNoPayload.
// The caller closes the reader.
func (e Engine) DownloadDocument(ctx context.Context, projectID, documentID string) (domain.Document, io.ReadCloser, error) {
	p, err := e.Project(ctx, projectID)
	if err != nil {
		return domain.Document{}, nil, err
	}
	for _, d := range p.Documents {
		if d.ID != documentID {
			continue
		}
		if d.BlobKey == "" {
			return d, nil, ErrNoPayload
		}
		_, rc, err := e.Blobs.Get(ctx, d.BlobKey)
		if err != nil {
			return d, nil, err
		}
		return d, rc, nil
	}
	return domain.Document{}, nil, fmt.Errorf("document %s: %w", documentID, store.ErrNotFound)
}

// DeleteDocument removes a document and its payload.
func (e Engine) DeleteDocument(ctx context.Context, projectID, documentID string) error {
	var removed domain.Document
	_, err := e.mutateProject("delete-document", projectID, access.EditProjectContents, func(_ domain.Actor, p *domain.Project) error {
		for i := range p.Documents {
			if p.Documents[i].ID == documentID {
				removed = p.Documents[i]
				p.Documents = append(p.Documents[:i], p.Documents[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("document %s: %w", documentID, store.ErrNotFound)
	})
	if err != nil {
		return err
	}
	if removed.BlobKey != "" {
		if _, err := e.Blobs.Delete(ctx, removed.BlobKey); err != nil {
			e.Logger.Warnf("drop attachment %s: %v", removed.BlobKey, err)
		}
	}
	return nil
}
