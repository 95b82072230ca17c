// Package roster holds the canonical student ordering and the grouping and
// tallying helpers shared by submission review tables and reports.
package roster

import (
	"sort"
	"strconv"

	"github.com/credilocker/credilocker-api/internal/credit"
	"github.com/credilocker/credilocker-api/internal/models"
)

// UIDSerial extracts the trailing roll serial of a UID as an integer.
// Roll numbers sort by this serial, not lexically ("003" < "015" < "100"
// even though a string compare of the suffixes would put "100" first).
// UIDs without a numeric suffix sort as 0.
func UIDSerial(uid string) int {
	i := len(uid)
	for i > 0 && uid[i-1] >= '0' && uid[i-1] <= '9' {
		i--
	}
	if i == len(uid) {
		return 0
	}
	n, err := strconv.Atoi(uid[i:])
	if err != nil {
		return 0
	}
	return n
}

// Less orders two students canonically: class ascending, then UID serial.
func Less(aClass, aUID, bClass, bUID string) bool {
	if aClass != bClass {
		return aClass < bClass
	}
	return UIDSerial(aUID) < UIDSerial(bUID)
}

// SortStudents orders a roster in place into the canonical order used by
// every table and report in the system.
func SortStudents(students []models.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		return Less(students[i].Class, students[i].UID, students[j].Class, students[j].UID)
	})
}

// GroupCEPByStudent buckets submissions by student UID, preserving the
// discovery order of both groups and members.
func GroupCEPByStudent(subs []models.CEPSubmission) (map[string][]models.CEPSubmission, []string) {
	groups := make(map[string][]models.CEPSubmission, len(subs))
	order := make([]string, 0, len(subs))
	for _, sub := range subs {
		if _, seen := groups[sub.StudentUID]; !seen {
			order = append(order, sub.StudentUID)
		}
		groups[sub.StudentUID] = append(groups[sub.StudentUID], sub)
	}
	return groups, order
}

// GroupFieldProjectByStudent buckets Field Project submissions by
// (student UID, class) so a UID appearing under two classes stays separate.
func GroupFieldProjectByStudent(subs []models.FieldProjectSubmission) (map[string][]models.FieldProjectSubmission, []string) {
	groups := make(map[string][]models.FieldProjectSubmission, len(subs))
	order := make([]string, 0, len(subs))
	for _, sub := range subs {
		key := sub.StudentUID + "|" + models.NormalizeClass(sub.Class)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], sub)
	}
	return groups, order
}

// Complete reports whether every required document type has been submitted.
// Extra types are ignored.
func Complete(required []string, submitted map[string]bool) bool {
	for _, r := range required {
		if !submitted[r] {
			return false
		}
	}
	return true
}

// TallyStatus classifies every student that has at least one submission.
// A submitted student with no approval record counts as pending; students
// without submissions are left out of every bucket.
func TallyStatus(submittedUIDs []string, approvals map[string]string) models.StatusTally {
	var tally models.StatusTally
	for _, uid := range submittedUIDs {
		switch approvals[uid] {
		case credit.StatusApproved:
			tally.Approved++
		case credit.StatusRejected:
			tally.Rejected++
		default:
			tally.Pending++
		}
	}
	return tally
}
