package domain

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

type ProjectStatus string

const (
	ProjectInProgress ProjectStatus = "Em andamento"
	ProjectInReview   ProjectStatus = "Em revisão"
	ProjectLate       ProjectStatus = "Atrasado"
	ProjectFinished   ProjectStatus = "Finalizado"
)

type TaskStatus string

const (
	TaskTodo     TaskStatus = "todo"
	TaskProgress TaskStatus = "progress"
	TaskDone     TaskStatus = "done"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "baixa"
	PriorityMedium TaskPriority = "media"
	PriorityHigh   TaskPriority = "alta"
)

type ActivityStatus string

const (
	ActivityNeedsHelp  ActivityStatus = "precisa de ajuda"
	ActivityInProgress ActivityStatus = "em andamento"
	ActivityResolved   ActivityStatus = "resolvida"
)

type Actor struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Role      Role   `json:"role" validate:"oneof=admin member viewer" enum:"admin,member,viewer"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Password  string `json:"password,omitempty"`
}

type Task struct {
	ID          string       `json:"id" validate:"required"`
	Title       string       `json:"title" validate:"required"`
	Responsible string       `json:"responsible"`
	Deadline    *Date        `json:"deadline,omitempty"`
	Priority    TaskPriority `json:"priority" validate:"oneof=baixa media alta" enum:"baixa,media,alta"`
	Status      TaskStatus   `json:"status" validate:"oneof=todo progress done" enum:"todo,progress,done"`
}

type Document struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Type        string `json:"type"`
	Link        string `json:"link"`
	Responsible string `json:"responsible"`
	BlobKey     string `json:"blob_key,omitempty"`
}

type ChecklistItem struct {
	ID        string `json:"id" validate:"required"`
	Text      string `json:"text" validate:"required"`
	Completed bool   `json:"completed"`
}

type Project struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Discipline  string          `json:"discipline" validate:"required"`
	DueDate     Date            `json:"due_date"`
	Status      ProjectStatus   `json:"status" validate:"oneof='Em andamento' 'Em revisão' 'Atrasado' 'Finalizado'" enum:"Em andamento,Em revisão,Atrasado,Finalizado"`
	Members     []string        `json:"members"`
	Tasks       []Task          `json:"tasks" validate:"dive"`
	Documents   []Document      `json:"documents" validate:"dive"`
	Checklist   []ChecklistItem `json:"checklist" validate:"dive"`
	Access      []string        `json:"access"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

type Comment struct {
	User string `json:"user" validate:"required"`
	Text string `json:"text" validate:"required"`
}

type Activity struct {
	ID          string         `json:"id" validate:"required"`
	Discipline  string         `json:"discipline" validate:"required"`
	Description string         `json:"description" validate:"required"`
	DueDate     *Date          `json:"due_date,omitempty"`
	Status      ActivityStatus `json:"status" validate:"oneof='precisa de ajuda' 'em andamento' 'resolvida'" enum:"precisa de ajuda,em andamento,resolvida"`
	User        string         `json:"user" validate:"required"`
	Comments    []Comment      `json:"comments" validate:"dive"`
	Pinned      bool           `json:"pinned"`
	ProjectID   string         `json:"project_id,omitempty"`
}

// HasAccess reports whether actorID is on the project's access list.
func (p Project) HasAccess(actorID string) bool {
	for _, id := range p.Access {
		if id == actorID {
			return true
		}
	}
	return false
}

// DeepCopy returns a copy that shares no slices with p.
func (p Project) DeepCopy() Project {
	out := p
	out.Members = append([]string(nil), p.Members...)
	out.Access = append([]string(nil), p.Access...)
	out.Documents = append([]Document(nil), p.Documents...)
	out.Checklist = append([]ChecklistItem(nil), p.Checklist...)
	if p.Tasks != nil {
		out.Tasks = make([]Task, len(p.Tasks))
		for i, t := range p.Tasks {
			if t.Deadline != nil {
				d := *t.Deadline
				t.Deadline = &d
			}
			out.Tasks[i] = t
		}
	}
	return out
}

func (a Activity) DeepCopy() Activity {
	out := a
	out.Comments = append([]Comment(nil), a.Comments...)
	if a.DueDate != nil {
		d := *a.DueDate
		out.DueDate = &d
	}
	return out
}
