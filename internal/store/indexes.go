package store

import (
	"fmt"

	"github.com/hashicorp/go-memdb"

	"studyboard/internal/domain"
)

var (
	tblProjects   = "projects"
	tblActivities = "activities"
)

// Rows carry a zero-padded creation sequence so the string index sorts by creation order.
type projectRow struct {
	ID      string
	Seq     string
	Project domain.Project
}

type activityRow struct {
	ID        string
	Seq       string
	ProjectID string
	Activity  domain.Activity
}

func seqKey(n uint64) string {
	return fmt.Sprintf("%020d", n)
}

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblProjects: {
			Name: tblProjects,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"seq": {
					Name:    "seq",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Seq"},
				},
			},
		},
		tblActivities: {
			Name: tblActivities,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"seq": {
					Name:    "seq",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Seq"},
				},
				"project_id": {
					Name:         "project_id",
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "ProjectID"},
				},
			},
		},
	},
}
