package models

import (
	"time"

	"github.com/lib/pq"
)

// Activity is a co-curricular event published by a teacher. One activity may
// target multiple classes.
type Activity struct {
	ID            int64          `db:"id" json:"id"`
	ActivityName  string         `db:"activity_name" json:"activity_name"`
	Date          string         `db:"date" json:"date"`
	Time          string         `db:"time" json:"time"`
	Venue         string         `db:"venue" json:"venue"`
	AssignedClass pq.StringArray `db:"assigned_class" json:"assigned_class"`
	Comments      string         `db:"comments" json:"comments"`
	CCPoints      int            `db:"cc_points" json:"cc_points"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// AssignedTo reports whether the activity targets the given class,
// tolerating stray whitespace and case differences in stored tags.
func (a Activity) AssignedTo(class string) bool {
	for _, c := range a.AssignedClass {
		if equalFoldTrim(c, class) {
			return true
		}
	}
	return false
}

// Attendance status values.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
)

// AttendanceRecord marks a student present or absent for one activity.
// At most one record exists per (activity, student) pair.
type AttendanceRecord struct {
	ActivityID       int64     `db:"activity_id" json:"activity_id"`
	StudentUID       string    `db:"student_uid" json:"student_uid"`
	AttendanceStatus string    `db:"attendance_status" json:"attendance_status"`
	MarkedBy         string    `db:"marked_by" json:"marked_by"`
	MarkedAt         time.Time `db:"marked_at" json:"marked_at"`
}
