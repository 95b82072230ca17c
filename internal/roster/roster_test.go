package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/credilocker/credilocker-api/internal/credit"
	"github.com/credilocker/credilocker-api/internal/models"
)

func TestUIDSerial(t *testing.T) {
	assert.Equal(t, 15, UIDSerial("24BIT015"))
	assert.Equal(t, 3, UIDSerial("24BIT003"))
	assert.Equal(t, 100, UIDSerial("24BIT100"))
	assert.Equal(t, 0, UIDSerial("24BITXX"))
	assert.Equal(t, 7, UIDSerial("7"))
	assert.Equal(t, 0, UIDSerial(""))
}

func TestSortStudentsNumericSuffix(t *testing.T) {
	students := []models.Student{
		{UID: "24BIT015", Class: "FYIT"},
		{UID: "24BIT003", Class: "FYIT"},
		{UID: "24BIT100", Class: "FYIT"},
	}
	SortStudents(students)

	uids := []string{students[0].UID, students[1].UID, students[2].UID}
	// A lexical compare of the suffixes would put "100" before "015".
	assert.Equal(t, []string{"24BIT003", "24BIT015", "24BIT100"}, uids)
}

func TestSortStudentsClassFirst(t *testing.T) {
	students := []models.Student{
		{UID: "24BSD002", Class: "FYSD"},
		{UID: "24BIT050", Class: "FYIT"},
		{UID: "24BIT001", Class: "FYIT"},
	}
	SortStudents(students)

	assert.Equal(t, "24BIT001", students[0].UID)
	assert.Equal(t, "24BIT050", students[1].UID)
	assert.Equal(t, "24BSD002", students[2].UID)
}

func TestGroupCEPByStudentPreservesOrder(t *testing.T) {
	subs := []models.CEPSubmission{
		{ID: "a", StudentUID: "u1"},
		{ID: "b", StudentUID: "u2"},
		{ID: "c", StudentUID: "u1"},
	}
	groups, order := GroupCEPByStudent(subs)

	assert.Equal(t, []string{"u1", "u2"}, order)
	assert.Len(t, groups["u1"], 2)
	assert.Equal(t, "a", groups["u1"][0].ID)
	assert.Equal(t, "c", groups["u1"][1].ID)
}

func TestGroupFieldProjectByStudentSplitsClasses(t *testing.T) {
	subs := []models.FieldProjectSubmission{
		{StudentUID: "u1", Class: "SYIT", DocumentType: models.DocOutcomeForm},
		{StudentUID: "u1", Class: "SYSD", DocumentType: models.DocOutcomeForm},
	}
	groups, order := GroupFieldProjectByStudent(subs)

	assert.Len(t, order, 2)
	assert.Len(t, groups["u1|SYIT"], 1)
	assert.Len(t, groups["u1|SYSD"], 1)
}

func TestComplete(t *testing.T) {
	required := []string{"A", "B", "C", "D"}

	assert.False(t, Complete(required, map[string]bool{"A": true, "B": true, "C": true}))
	assert.True(t, Complete(required, map[string]bool{"A": true, "B": true, "C": true, "D": true, "E": true}))
	assert.True(t, Complete(nil, nil))
}

func TestTallyStatus(t *testing.T) {
	submitted := []string{"u1", "u2", "u3", "u4"}
	approvals := map[string]string{
		"u1": credit.StatusApproved,
		"u2": credit.StatusRejected,
		"u3": credit.StatusPending,
		// u4 submitted but never evaluated: counts as pending.
	}

	tally := TallyStatus(submitted, approvals)
	assert.Equal(t, models.StatusTally{Pending: 2, Approved: 1, Rejected: 1}, tally)

	// Pure function: same inputs, same counts.
	assert.Equal(t, tally, TallyStatus(submitted, approvals))
}

func TestTallyStatusExcludesNonSubmitters(t *testing.T) {
	tally := TallyStatus(nil, map[string]string{"ghost": credit.StatusApproved})
	assert.Equal(t, models.StatusTally{}, tally)
}
