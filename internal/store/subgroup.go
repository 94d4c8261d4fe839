package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/schoolevents/internal/model"
)

type SubgroupStore struct {
	db *sql.DB
}

func NewSubgroupStore(db *sql.DB) *SubgroupStore {
	return &SubgroupStore{db: db}
}

// List returns the whole subgroup catalog in display order.
func (s *SubgroupStore) List() ([]model.AudienceSubgroup, error) {
	rows, err := s.db.Query(`SELECT id, name, group_name FROM audience_subgroups ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("query subgroups: %w", err)
	}
	defer rows.Close()

	var subgroups []model.AudienceSubgroup
	for rows.Next() {
		var sg model.AudienceSubgroup
		var group string
		if err := rows.Scan(&sg.ID, &sg.Name, &group); err != nil {
			return nil, fmt.Errorf("scan subgroup: %w", err)
		}
		sg.Group = model.AudienceGroup(group)
		subgroups = append(subgroups, sg)
	}
	return subgroups, rows.Err()
}

func (s *SubgroupStore) ListByGroup(group model.AudienceGroup) ([]model.AudienceSubgroup, error) {
	rows, err := s.db.Query(
		`SELECT id, name, group_name FROM audience_subgroups WHERE group_name = ? ORDER BY sort_order ASC`,
		string(group),
	)
	if err != nil {
		return nil, fmt.Errorf("query subgroups for %s: %w", group, err)
	}
	defer rows.Close()

	var subgroups []model.AudienceSubgroup
	for rows.Next() {
		var sg model.AudienceSubgroup
		var g string
		if err := rows.Scan(&sg.ID, &sg.Name, &g); err != nil {
			return nil, fmt.Errorf("scan subgroup: %w", err)
		}
		sg.Group = model.AudienceGroup(g)
		subgroups = append(subgroups, sg)
	}
	return subgroups, rows.Err()
}
