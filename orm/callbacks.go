package orm

import (
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterPreSetCallbacks makes pre-set attributes win on every create and
// update too, not only during SetAttributes: the values are written into the
// statement right before GORM builds the INSERT or UPDATE. Registering twice
// on the same *gorm.DB is a no-op.
func RegisterPreSetCallbacks(db *gorm.DB) error {
	if db.Callback().Create().Get("recordkit:preset_create") != nil {
		return nil
	}
	if err := db.Callback().Create().Before("gorm:create").
		Register("recordkit:preset_create", applyPreSet); err != nil {
		return err
	}
	return db.Callback().Update().Before("gorm:update").
		Register("recordkit:preset_update", applyPreSet)
}

func applyPreSet(tx *gorm.DB) {
	if tx.Error != nil || tx.Statement.Schema == nil {
		return
	}

	p, ok := tx.Statement.Model.(PreSetter)
	if !ok {
		return
	}
	preSet := p.PreSetAttributes()
	if len(preSet) == 0 {
		return
	}

	names := make([]string, 0, len(preSet))
	for name := range preSet {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if attributeField(tx.Statement.Schema, name) == nil {
			zap.L().Warn("orm: pre-set attribute has no column",
				zap.String("model", tx.Statement.Schema.Name), zap.String("attribute", name))
			tx.AddError(ErrUnknownAttribute)
			return
		}
		tx.Statement.SetColumn(name, preSet[name], true)
	}
}
