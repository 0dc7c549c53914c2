package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

const (
	rollupFunctionName = "atlas_refresh_country_population"
	rollupTriggerName  = "trg_city_country_population"
)

// The trigger covers writes that bypass the application: OLD and NEW country ids are both
// refreshed so deletes and reassignments keep the source country correct.
var rollupTriggerStatements = []string{
	`CREATE OR REPLACE FUNCTION ` + rollupFunctionName + `() RETURNS TRIGGER AS $$
BEGIN
  IF TG_OP IN ('UPDATE', 'DELETE') THEN
    UPDATE country
       SET population = (SELECT COALESCE(SUM(population), 0) FROM city WHERE country_id = OLD.country_id)
     WHERE id = OLD.country_id;
  END IF;
  IF TG_OP IN ('INSERT', 'UPDATE') THEN
    IF TG_OP = 'INSERT' OR NEW.country_id IS DISTINCT FROM OLD.country_id OR NEW.population IS DISTINCT FROM OLD.population THEN
      UPDATE country
         SET population = (SELECT COALESCE(SUM(population), 0) FROM city WHERE country_id = NEW.country_id)
       WHERE id = NEW.country_id;
    END IF;
  END IF;
  RETURN NULL;
END;
$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS ` + rollupTriggerName + ` ON city`,
	`CREATE TRIGGER ` + rollupTriggerName + `
AFTER INSERT OR UPDATE OF population, country_id OR DELETE ON city
FOR EACH ROW EXECUTE FUNCTION ` + rollupFunctionName + `()`,
}

// InstallRollupTrigger creates or replaces the Postgres population trigger.
func InstallRollupTrigger(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range rollupTriggerStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("install rollup trigger: %w", err)
			}
		}
		return nil
	})
}

// DropRollupTrigger removes the trigger and its function.
func DropRollupTrigger(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DROP TRIGGER IF EXISTS ` + rollupTriggerName + ` ON city`).Error; err != nil {
			return err
		}
		return tx.Exec(`DROP FUNCTION IF EXISTS ` + rollupFunctionName + `()`).Error
	})
}
