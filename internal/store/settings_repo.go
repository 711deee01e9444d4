package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const settingsTable = "settings"

type settingsRepo struct {
	drv *entsql.Driver
}

func (r *settingsRepo) Load(ctx context.Context) ([]byte, int, error) {
	query, args := sqlite.Select("data", "version").
		From(entsql.Table(settingsTable)).
		Where(entsql.EQ("id", 1)).
		Query()

	var data []byte
	var version int
	err := queryRows(ctx, r.drv, query, args, func(rows *entsql.Rows) error {
		var s string
		if err := rows.Scan(&s, &version); err != nil {
			return err
		}
		data = []byte(s)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("load settings: %w", err)
	}
	return data, version, nil
}

func (r *settingsRepo) Save(ctx context.Context, data []byte, version int) error {
	query, args := sqlite.Insert(settingsTable).
		Columns("id", "version", "data", "updated_at").
		Values(1, version, string(data), time.Now().UnixMilli()).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (r *settingsRepo) Delete(ctx context.Context) error {
	query, args := sqlite.Delete(settingsTable).Where(entsql.EQ("id", 1)).Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}
