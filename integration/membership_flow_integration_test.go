package booking_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dojobook/internal/auth"
	"dojobook/internal/email"
	"dojobook/internal/membership"
	"dojobook/internal/plan"
	"dojobook/internal/user"
)

func newMembershipRouter(db *sqlx.DB) *gin.Engine {
	emailService := email.New("test@dojobook.test", "DojoBook", "mailhog", "1025", "", "", "localhost:6380")

	membershipRepo := membership.NewRepository(db)
	planRepo := plan.NewRepository(db)
	userRepo := user.NewRepository(db)

	service := membership.NewService(membershipRepo, planRepo, userRepo, emailService)
	handler := membership.NewHandler(service)

	router := gin.New()
	authed := router.Group("/", auth.AuthMiddleware(testSecret))
	authed.POST("/memberships", handler.RequestMembership)
	authed.GET("/memberships/me", handler.MyMemberships)
	authed.POST("/memberships/:membershipID/cancel", handler.CancelMembership)

	admin := router.Group("/admin", auth.AuthMiddleware(testSecret), auth.RequireRole("admin"))
	admin.GET("/memberships/pending", handler.ListPending)
	admin.POST("/memberships/:membershipID/approve", handler.Approve)
	admin.POST("/memberships/:membershipID/reject", handler.Reject)
	admin.POST("/memberships/process-upgrades", handler.ProcessUpgrades)

	return router
}

func requestMembership(t *testing.T, router *gin.Engine, token string, planID int) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"plan_id": %d}`, planID)
	req := httptest.NewRequest("POST", "/memberships", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMembershipLifecycleIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	router := newMembershipRouter(db)

	t.Run("Request, approve, and cancel", func(t *testing.T) {
		cleanDatabase(t, db)

		userID := createTestUser(t, db, "mia@example.com", "Mia", dateOfBirthForAge(25))
		planID := createTestPlan(t, db, "Unlimited Adults", nil, nil)
		adminID := createTestUser(t, db, "admin@example.com", "Admin", dateOfBirthForAge(40))

		token := generateTestToken(userID, "mia@example.com", "member")
		adminToken := generateTestToken(adminID, "admin@example.com", "admin")

		// Member requests a membership; it lands pending.
		w := requestMembership(t, router, token, planID)
		require.Equal(t, http.StatusCreated, w.Code)

		var m map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &m)
		membershipID := int(m["id"].(float64))
		assert.Equal(t, "pending", m["status"])

		// Admin sees it in the pending queue.
		reqPending := httptest.NewRequest("GET", "/admin/memberships/pending", nil)
		reqPending.Header.Set("Authorization", "Bearer "+adminToken)
		wPending := httptest.NewRecorder()
		router.ServeHTTP(wPending, reqPending)
		require.Equal(t, http.StatusOK, wPending.Code)
		assert.Contains(t, wPending.Body.String(), "mia@example.com")

		// Approve activates it.
		reqApprove := httptest.NewRequest("POST", fmt.Sprintf("/admin/memberships/%d/approve", membershipID), nil)
		reqApprove.Header.Set("Authorization", "Bearer "+adminToken)
		wApprove := httptest.NewRecorder()
		router.ServeHTTP(wApprove, reqApprove)
		require.Equal(t, http.StatusOK, wApprove.Code)

		var status string
		require.NoError(t, db.Get(&status, "SELECT status FROM memberships WHERE id = $1", membershipID))
		assert.Equal(t, "active", status)

		// Member cancels their own membership.
		reqCancel := httptest.NewRequest("POST", fmt.Sprintf("/memberships/%d/cancel", membershipID), nil)
		reqCancel.Header.Set("Authorization", "Bearer "+token)
		wCancel := httptest.NewRecorder()
		router.ServeHTTP(wCancel, reqCancel)
		require.Equal(t, http.StatusOK, wCancel.Code)

		require.NoError(t, db.Get(&status, "SELECT status FROM memberships WHERE id = $1", membershipID))
		assert.Equal(t, "cancelled", status)
	})

	t.Run("Duplicate open membership is rejected", func(t *testing.T) {
		cleanDatabase(t, db)

		userID := createTestUser(t, db, "mia@example.com", "Mia", dateOfBirthForAge(25))
		planID := createTestPlan(t, db, "Unlimited Adults", nil, nil)
		token := generateTestToken(userID, "mia@example.com", "member")

		w1 := requestMembership(t, router, token, planID)
		require.Equal(t, http.StatusCreated, w1.Code)

		w2 := requestMembership(t, router, token, planID)
		assert.Equal(t, http.StatusConflict, w2.Code)
		assert.Contains(t, w2.Body.String(), "pending or active")
	})

	t.Run("Age-restricted plan denies an adult", func(t *testing.T) {
		cleanDatabase(t, db)

		userID := createTestUser(t, db, "mia@example.com", "Mia", dateOfBirthForAge(25))
		token := generateTestToken(userID, "mia@example.com", "member")

		var planID int
		err := db.QueryRow(`
			INSERT INTO membership_plans (name, price_cents, age_min, age_max)
			VALUES ('Kids Only', 9900, 6, 15)
			RETURNING id
		`).Scan(&planID)
		require.NoError(t, err)

		w := requestMembership(t, router, token, planID)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "age_too_high")
	})

	t.Run("Reject requires a reason and records it", func(t *testing.T) {
		cleanDatabase(t, db)

		userID := createTestUser(t, db, "mia@example.com", "Mia", dateOfBirthForAge(25))
		planID := createTestPlan(t, db, "Unlimited Adults", nil, nil)
		adminID := createTestUser(t, db, "admin@example.com", "Admin", dateOfBirthForAge(40))

		token := generateTestToken(userID, "mia@example.com", "member")
		adminToken := generateTestToken(adminID, "admin@example.com", "admin")

		w := requestMembership(t, router, token, planID)
		require.Equal(t, http.StatusCreated, w.Code)

		var m map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &m)
		membershipID := int(m["id"].(float64))

		reqReject := httptest.NewRequest("POST", fmt.Sprintf("/admin/memberships/%d/reject", membershipID),
			strings.NewReader(`{"reason": "references did not check out"}`))
		reqReject.Header.Set("Content-Type", "application/json")
		reqReject.Header.Set("Authorization", "Bearer "+adminToken)
		wReject := httptest.NewRecorder()
		router.ServeHTTP(wReject, reqReject)
		require.Equal(t, http.StatusOK, wReject.Code)

		var reason string
		require.NoError(t, db.Get(&reason, "SELECT rejection_reason FROM memberships WHERE id = $1", membershipID))
		assert.Equal(t, "references did not check out", reason)
	})

	t.Run("Non-admin cannot approve", func(t *testing.T) {
		cleanDatabase(t, db)

		userID := createTestUser(t, db, "mia@example.com", "Mia", dateOfBirthForAge(25))
		token := generateTestToken(userID, "mia@example.com", "member")

		req := httptest.NewRequest("POST", "/admin/memberships/1/approve", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestBeginnerUpgradeSweepIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	router := newMembershipRouter(db)

	t.Run("Expired beginner window opens the upgrade request", func(t *testing.T) {
		cleanDatabase(t, db)

		userID := createTestUser(t, db, "mia@example.com", "Mia", dateOfBirthForAge(25))
		adminID := createTestUser(t, db, "admin@example.com", "Admin", dateOfBirthForAge(40))
		fullPlanID := createTestPlan(t, db, "Unlimited Adults", nil, nil)

		var beginnerPlanID int
		err := db.QueryRow(`
			INSERT INTO membership_plans (name, price_cents, is_beginner_only, beginner_duration_weeks, auto_upgrade_plan_id)
			VALUES ('Beginner Special', 9900, TRUE, 12, $1)
			RETURNING id
		`, fullPlanID).Scan(&beginnerPlanID)
		require.NoError(t, err)

		// Beginner window ended yesterday.
		var membershipID int
		err = db.QueryRow(`
			INSERT INTO memberships (user_id, plan_id, status, start_date, end_date,
				beginner_start_date, beginner_end_date, auto_upgrade_plan_id)
			VALUES ($1, $2, 'active', NOW() - INTERVAL '12 weeks', NOW() - INTERVAL '1 day',
				NOW() - INTERVAL '12 weeks', NOW() - INTERVAL '1 day', $3)
			RETURNING id
		`, userID, beginnerPlanID, fullPlanID).Scan(&membershipID)
		require.NoError(t, err)

		adminToken := generateTestToken(adminID, "admin@example.com", "admin")
		req := httptest.NewRequest("POST", "/admin/memberships/process-upgrades", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"processed":1`)

		var status string
		require.NoError(t, db.Get(&status, "SELECT status FROM memberships WHERE id = $1", membershipID))
		assert.Equal(t, "expired", status)

		var pendingCount int
		require.NoError(t, db.Get(&pendingCount, `
			SELECT COUNT(*) FROM memberships
			WHERE user_id = $1 AND plan_id = $2 AND status = 'pending'
		`, userID, fullPlanID))
		assert.Equal(t, 1, pendingCount, "upgrade should open a pending request on the full plan")
	})
}
