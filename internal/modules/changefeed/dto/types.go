package dto

import "time"

type ChangeOutput struct {
	Seq        int64
	RecordType string
	RecordID   string
	Op         string
	ChangedAt  time.Time
}
