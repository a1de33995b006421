package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"studyboard/internal/domain"
)

// Config models studyboard.yml.
type Config struct {
	App struct {
		Timezone   string `yaml:"timezone"`
		SessionKey string `yaml:"session_key"`
		LogLevel   string `yaml:"log_level"`
	} `yaml:"app"`
	Assistant   AssistantConfig   `yaml:"assistant"`
	Attachments AttachmentsConfig `yaml:"attachments"`
	Seed        Seed              `yaml:"seed"`
}

type AssistantConfig struct {
	Model  string `yaml:"model"`
	Prompt string `yaml:"prompt"`
}

type AttachmentsConfig struct {
	Driver string `yaml:"driver"`
	S3     struct {
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		Endpoint  string `yaml:"endpoint"`
		PathStyle bool   `yaml:"path_style"`
	} `yaml:"s3"`
}

// Seed is the mock data loaded once at start. Dates are day offsets from today.
type Seed struct {
	Users      []SeedUser     `yaml:"users"`
	Projects   []SeedProject  `yaml:"projects"`
	Activities []SeedActivity `yaml:"activities"`
}

type SeedUser struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Role      string `yaml:"role"`
	AvatarURL string `yaml:"avatar_url"`
	Password  string `yaml:"password"`
}

type SeedProject struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Discipline  string          `yaml:"discipline"`
	DueInDays   int             `yaml:"due_in_days"`
	Status      string          `yaml:"status"`
	Members     []string        `yaml:"members"`
	Tasks       []SeedTask      `yaml:"tasks"`
	Documents   []SeedDocument  `yaml:"documents"`
	Checklist   []SeedChecklist `yaml:"checklist"`
	Access      []string        `yaml:"access"`
}

type SeedTask struct {
	ID             string `yaml:"id"`
	Title          string `yaml:"title"`
	Responsible    string `yaml:"responsible"`
	Status         string `yaml:"status"`
	Priority       string `yaml:"priority"`
	DeadlineInDays *int   `yaml:"deadline_in_days"`
}

type SeedDocument struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Type        string `yaml:"type"`
	Link        string `yaml:"link"`
	Responsible string `yaml:"responsible"`
}

type SeedChecklist struct {
	ID        string `yaml:"id"`
	Text      string `yaml:"text"`
	Completed bool   `yaml:"completed"`
}

type SeedActivity struct {
	ID          string        `yaml:"id"`
	Discipline  string        `yaml:"discipline"`
	Description string        `yaml:"description"`
	Status      string        `yaml:"status"`
	User        string        `yaml:"user"`
	DueInDays   *int          `yaml:"due_in_days"`
	Comments    []SeedComment `yaml:"comments"`
	Pinned      bool          `yaml:"pinned"`
	ProjectID   string        `yaml:"project_id"`
}

type SeedComment struct {
	User string `yaml:"user"`
	Text string `yaml:"text"`
}

const DefaultSessionKey = "studyboard-user"

// Load reads and validates config from workspace, falling back to the default.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "studyboard.yml")
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses, defaults and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in config with the demo seed.
func Default() *Config {
	cfg, err := FromYAML([]byte(defaultTemplate))
	if err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

func (c *Config) applyDefaults() {
	if c.App.Timezone == "" {
		c.App.Timezone = "UTC"
	}
	if c.App.SessionKey == "" {
		c.App.SessionKey = DefaultSessionKey
	}
	if c.Attachments.Driver == "" {
		c.Attachments.Driver = "memory"
	}
	if c.Assistant.Model == "" {
		c.Assistant.Model = "gemini-2.0-flash"
	}
}

// Location resolves App.Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.App.Timezone)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config.app.timezone: %w", err)
	}
	if c.Assistant.Prompt != "" && !strings.Contains(c.Assistant.Prompt, "{{prompt}}") {
		return fmt.Errorf("config.assistant.prompt must contain {{prompt}}")
	}
	switch c.Attachments.Driver {
	case "memory":
	case "s3":
		if c.Attachments.S3.Bucket == "" {
			return fmt.Errorf("config.attachments.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("config.attachments.driver must be memory or s3, got %q", c.Attachments.Driver)
	}
	users := map[string]bool{}
	names := map[string]bool{}
	for _, u := range c.Seed.Users {
		if u.ID == "" || u.Name == "" {
			return fmt.Errorf("seed user requires id and name")
		}
		if users[u.ID] {
			return fmt.Errorf("seed user %s defined twice", u.ID)
		}
		if names[strings.ToLower(u.Name)] {
			return fmt.Errorf("seed user name %s is not unique", u.Name)
		}
		switch domain.Role(u.Role) {
		case domain.RoleAdmin, domain.RoleMember, domain.RoleViewer:
		default:
			return fmt.Errorf("seed user %s has invalid role %q", u.ID, u.Role)
		}
		users[u.ID] = true
		names[strings.ToLower(u.Name)] = true
	}
	projects := map[string]bool{}
	for _, p := range c.Seed.Projects {
		if p.ID == "" {
			return fmt.Errorf("seed project requires id")
		}
		if projects[p.ID] {
			return fmt.Errorf("seed project %s defined twice", p.ID)
		}
		projects[p.ID] = true
		for _, id := range p.Access {
			if !users[id] {
				return fmt.Errorf("seed project %s grants access to unknown user %s", p.ID, id)
			}
		}
	}
	for _, a := range c.Seed.Activities {
		if a.ProjectID != "" && !projects[a.ProjectID] {
			return fmt.Errorf("seed activity %s references unknown project %s", a.ID, a.ProjectID)
		}
	}
	return nil
}

// Build materializes the seed relative to today.
func (s Seed) Build(today domain.Date) ([]domain.Actor, []domain.Project, []domain.Activity) {
	actors := make([]domain.Actor, 0, len(s.Users))
	for _, u := range s.Users {
		actors = append(actors, domain.Actor{
			ID:        u.ID,
			Name:      u.Name,
			Role:      domain.Role(u.Role),
			AvatarURL: u.AvatarURL,
			Password:  u.Password,
		})
	}
	projects := make([]domain.Project, 0, len(s.Projects))
	for _, sp := range s.Projects {
		p := domain.Project{
			ID:          sp.ID,
			Name:        sp.Name,
			Description: sp.Description,
			Discipline:  sp.Discipline,
			DueDate:     today.AddDays(sp.DueInDays),
			Status:      domain.ProjectStatus(sp.Status),
			Members:     append([]string{}, sp.Members...),
			Tasks:       []domain.Task{},
			Documents:   []domain.Document{},
			Checklist:   []domain.ChecklistItem{},
			Access:      append([]string{}, sp.Access...),
		}
		for _, st := range sp.Tasks {
			t := domain.Task{
				ID:          st.ID,
				Title:       st.Title,
				Responsible: st.Responsible,
				Priority:    domain.TaskPriority(st.Priority),
				Status:      domain.TaskStatus(st.Status),
			}
			if st.DeadlineInDays != nil {
				t.Deadline = domain.DatePtr(today.AddDays(*st.DeadlineInDays))
			}
			p.Tasks = append(p.Tasks, t)
		}
		for _, sd := range sp.Documents {
			p.Documents = append(p.Documents, domain.Document{
				ID:          sd.ID,
				Title:       sd.Title,
				Type:        sd.Type,
				Link:        sd.Link,
				Responsible: sd.Responsible,
			})
		}
		for _, sc := range sp.Checklist {
			p.Checklist = append(p.Checklist, domain.ChecklistItem(sc))
		}
		projects = append(projects, p)
	}
	activities := make([]domain.Activity, 0, len(s.Activities))
	for _, sa := range s.Activities {
		a := domain.Activity{
			ID:          sa.ID,
			Discipline:  sa.Discipline,
			Description: sa.Description,
			Status:      domain.ActivityStatus(sa.Status),
			User:        sa.User,
			Comments:    []domain.Comment{},
			Pinned:      sa.Pinned,
			ProjectID:   sa.ProjectID,
		}
		if sa.DueInDays != nil {
			a.DueDate = domain.DatePtr(today.AddDays(*sa.DueInDays))
		}
		for _, c := range sa.Comments {
			a.Comments = append(a.Comments, domain.Comment(c))
		}
		activities = append(activities, a)
	}
	return actors, projects, activities
}
