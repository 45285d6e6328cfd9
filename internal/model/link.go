package model

import (
	"crypto/sha256"
	"encoding/hex"

	"gorm.io/gorm"
)

type Link struct {
	BaseModel
	OwnerID     *string `gorm:"size:36;index:idx_owner_original,priority:1" json:"ownerId,omitempty"`
	OriginalURL string  `gorm:"size:2048;not null;index:idx_owner_original,priority:2,length:255" json:"originalUrl"`
	Alias       string  `gorm:"size:32;not null;index" json:"alias"`
	ShortURL    string  `gorm:"size:255;not null" json:"shortUrl"`
	Title       *string `gorm:"size:255" json:"title,omitempty"`
	IsActive    bool    `gorm:"default:true" json:"isActive"`
	Clicks      int64   `gorm:"default:0" json:"clicks"`
	// ActiveKey 活跃记录的 (owner_id, original_url) 摘要，停用时置空。
	// MySQL 不支持部分唯一索引，唯一约束落在该列上：NULL 不参与唯一性，
	// 停用后同 URL 可重新提交；摘要定长，也绕开了长 URL 的前缀索引限制。
	ActiveKey *string `gorm:"size:64;uniqueIndex:uniq_active_owner_original" json:"-"`
}

// ActiveLinkKey 计算 (owner_id, original_url) 的唯一性摘要
func ActiveLinkKey(ownerID, originalURL string) string {
	sum := sha256.Sum256([]byte(ownerID + "\x00" + originalURL))
	return hex.EncodeToString(sum[:])
}

// BeforeSave 维护唯一性摘要：活跃且有归属时写入，否则置空
func (l *Link) BeforeSave(tx *gorm.DB) error {
	if l.IsActive && l.OwnerID != nil {
		key := ActiveLinkKey(*l.OwnerID, l.OriginalURL)
		l.ActiveKey = &key
	} else {
		l.ActiveKey = nil
	}
	return nil
}
