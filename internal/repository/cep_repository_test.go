package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/credilocker/credilocker-api/internal/credit"
	"github.com/credilocker/credilocker-api/internal/models"
)

func TestCEPRepositoryRequirementRoundTrip(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCEPRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cep_requirements")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := &models.CEPRequirement{
		AssignedClass: "SYIT",
		MinimumHours:  20,
		Deadline:      time.Now().Add(30 * 24 * time.Hour),
		CreditsConfig: models.CreditTiers{{Hours: 5, Credits: 1}, {Hours: 20, Credits: 4}},
	}
	require.NoError(t, repo.CreateRequirement(context.Background(), req))
	require.NotEmpty(t, req.ID)

	rows := sqlmock.NewRows([]string{"id", "assigned_class", "minimum_hours", "deadline", "credits_config", "teacher_employee_code", "created_at"}).
		AddRow(req.ID, "SYIT", 20.0, req.Deadline, []byte(`[{"hours":5,"credits":1},{"hours":20,"credits":4}]`), "T001", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("UPPER(assigned_class) = $1")).
		WithArgs("SYIT").
		WillReturnRows(rows)

	found, err := repo.FindRequirementByClass(context.Background(), "syit")
	require.NoError(t, err)
	require.Len(t, found.CreditsConfig, 2)
	require.Equal(t, credit.Tier{Hours: 20, Credits: 4}, found.CreditsConfig[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCEPRepositoryApprovalUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCEPRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_uid, class)")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	approval := &models.CEPApproval{
		StudentUID:      "24BIT001",
		Class:           "SYIT",
		ApprovalStatus:  credit.StatusApproved,
		CreditsAllotted: 2,
		EvaluatedBy:     "T001",
	}
	require.NoError(t, repo.UpsertApproval(context.Background(), approval))
	require.False(t, approval.EvaluatedAt.IsZero())

	// A second evaluation replaces the row via the same atomic statement.
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_uid, class)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	approval.ApprovalStatus = credit.StatusRejected
	approval.CreditsAllotted = 0
	require.NoError(t, repo.UpsertApproval(context.Background(), approval))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCEPRepositoryDeleteSubmissionScopedToOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCEPRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cep_submissions WHERE id = $1 AND student_uid = $2")).
		WithArgs("sub-1", "24BIT001").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.DeleteSubmission(context.Background(), "sub-1", "24BIT001")
	require.NoError(t, err)
	require.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCEPRepositoryDeleteSubmissionResultError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCEPRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cep_submissions WHERE id = $1 AND student_uid = $2")).
		WithArgs("sub-1", "24BIT001").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows affected unsupported")))

	// A driver failure must surface as an error, not as "not found".
	deleted, err := repo.DeleteSubmission(context.Background(), "sub-1", "24BIT001")
	require.Error(t, err)
	require.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCEPRepositorySumHours(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCEPRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(SUM(hours), 0)")).
		WithArgs("24BIT001").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(12.5))

	total, err := repo.SumHoursByStudent(context.Background(), "24BIT001")
	require.NoError(t, err)
	require.Equal(t, 12.5, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
