// Package seed bootstraps the reference records a fresh deployment needs
// before bills can be issued.
package seed

import (
	"context"
	"errors"
	"time"

	directorydomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/directory/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const defaultHospitalName = "Main Hospital"

// EnsureMainHospital seeds the default hospital for startup bootstrap.
func EnsureMainHospital(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureMainHospitalTx(ctx, tx, node)
		return err
	})
}

func ensureMainHospitalTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (directorydomain.Hospital, error) {
	var hospital directorydomain.Hospital
	err := tx.WithContext(ctx).Where("name = ?", defaultHospitalName).First(&hospital).Error
	if err == nil {
		return hospital, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return hospital, err
	}
	hospital = directorydomain.Hospital{
		ID:        node.Generate(),
		Name:      defaultHospitalName,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(&hospital).Error; err != nil {
		return hospital, err
	}
	return hospital, nil
}
