package model

import (
	"fmt"
	"regexp"

	"stopbonus/internal/entity/db"

	"gorm.io/gorm"
)

var namespacePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type migrationStep struct {
	model any
	// 索引名或字段名，交给 Migrator 解析
	indexes []string
}

// 依赖顺序：被引用的表在前
var migrationSteps = []migrationStep{
	{model: &db.Account{}},
	{model: &db.Weapon{}, indexes: []string{"AccountID", "Name"}},
	{model: &db.BonusRecord{}, indexes: []string{"idx_bonus_record_account_start"}},
	{model: &db.BonusRecordWeapon{}, indexes: []string{"WeaponID"}},
}

// MigrateSchema 只做增量迁移：建立命名空间、缺失的表、列和索引。
// 已存在的列不会被删除或修改，可以在每次启动时重复执行。
func MigrateSchema(gdb *gorm.DB, namespace string) error {
	if err := ensureNamespace(gdb, namespace); err != nil {
		return err
	}

	m := gdb.Migrator()
	for _, step := range migrationSteps {
		if !m.HasTable(step.model) {
			if err := m.CreateTable(step.model); err != nil {
				return fmt.Errorf("create table for %T: %w", step.model, err)
			}
			continue
		}

		stmt := &gorm.Statement{DB: gdb}
		if err := stmt.Parse(step.model); err != nil {
			return fmt.Errorf("parse %T: %w", step.model, err)
		}
		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" || field.IgnoreMigration {
				continue
			}
			if !m.HasColumn(step.model, field.DBName) {
				if err := m.AddColumn(step.model, field.DBName); err != nil {
					return fmt.Errorf("add column %s.%s: %w", stmt.Schema.Table, field.DBName, err)
				}
			}
		}
		for _, idx := range step.indexes {
			if !m.HasIndex(step.model, idx) {
				if err := m.CreateIndex(step.model, idx); err != nil {
					return fmt.Errorf("create index %s on %s: %w", idx, stmt.Schema.Table, err)
				}
			}
		}
	}
	return nil
}

// ensureNamespace 在支持 schema 的数据库上创建命名空间；SQLite 和 MySQL 以数据库本身作为命名空间。
func ensureNamespace(gdb *gorm.DB, namespace string) error {
	if namespace == "" || gdb.Dialector.Name() != DBTypePostgres {
		return nil
	}
	if !namespacePattern.MatchString(namespace) {
		return fmt.Errorf("invalid schema name %q", namespace)
	}
	if err := gdb.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, namespace)).Error; err != nil {
		return fmt.Errorf("create schema %s: %w", namespace, err)
	}
	return nil
}

// tablePrefix 返回命名策略使用的表前缀。
func tablePrefix(dbType, namespace string) string {
	if dbType == DBTypePostgres && namespace != "" {
		return namespace + "."
	}
	return ""
}
