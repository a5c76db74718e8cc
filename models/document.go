package models

import (
	"time"
)

// Document 文档存储中的一条记录：路径 -> JSON 值
// 路径形如 events_meta/{id}、events_data/{id}/{key}
type Document struct {
	Path      string    `json:"path" gorm:"primaryKey;size:255"`
	Value     string    `json:"value" gorm:"type:longtext;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Document) TableName() string {
	return "documents"
}
