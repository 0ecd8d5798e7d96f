// Package pg connects to PostgreSQL through a pgx pool, applies the embedded
// goose migrations and provides KVStore, a key-value table used to persist
// user templates.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//	store := templatestore.New(pg.NewKVStore(pool))
package pg
