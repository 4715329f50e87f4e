package models

// SubscriberModel is one newsletter opt-in. Email is stored normalized.
type SubscriberModel struct {
	Base
	Email  string `json:"email"  gorm:"size:254;uniqueIndex:idx_subscribers_email,length:191;not null"`
	Source string `json:"source" gorm:"size:191"`
}

func (SubscriberModel) TableName() string { return "subscribers" }
