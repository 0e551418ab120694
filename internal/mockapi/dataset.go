// Package mockapi is the development gateway: a gin server that speaks
// the HealthPulse analytics contract against a seeded in-memory dataset
// so the client can be exercised without the real platform.
package mockapi

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yassnemo/health-pulse-sub000/pkg/api"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already registered")
	ErrBadCredentials    = errors.New("incorrect username or password")
)

// TransitionError marks an alert status change the lifecycle forbids.
type TransitionError struct {
	From, To api.AlertStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("alert transition %s -> %s is not allowed", e.From, e.To)
}

type userRecord struct {
	api.User
	PasswordHash string
}

// Dataset is the in-memory world the mock gateway serves. All access
// goes through the methods; the mutex makes them safe under gin's
// per-request goroutines.
type Dataset struct {
	mu          sync.RWMutex
	users       []*userRecord
	patients    []api.PatientDetail
	alerts      []api.Alert
	audit       []api.AuditLogEntry
	thresholds  api.AlertThresholds
	nextAlertID int
	seededAt    time.Time
}

func hashPassword(pw string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		// Only reachable for passwords over 72 bytes.
		panic(err)
	}
	return string(hash)
}

func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// NewDataset seeds a deterministic demo world: three login accounts, a
// patient census across five departments, and alerts for the high-risk
// tail.
func NewDataset() *Dataset {
	d := &Dataset{
		nextAlertID: 1,
		seededAt:    time.Now().UTC(),
		thresholds: api.AlertThresholds{
			Thresholds: map[string]map[string]float64{
				"deterioration": {"medium": 0.40, "high": 0.70},
				"readmission":   {"medium": 0.40, "high": 0.70},
				"sepsis":        {"medium": 0.40, "high": 0.70},
			},
		},
	}
	d.seedUsers()
	d.seedPatients(rand.New(rand.NewSource(42)))
	return d
}

func (d *Dataset) seedUsers() {
	seed := []struct {
		user api.User
		pw   string
	}{
		{api.User{ID: "u-001", Username: "admin", Name: "Alex Morgan", Email: "admin@healthpulse.dev", Role: "admin"}, "admin123"},
		{api.User{ID: "u-002", Username: "jchen", Name: "Jennifer Chen", Email: "jchen@healthpulse.dev", Role: "clinician", Department: "ICU"}, "clinician123"},
		{api.User{ID: "u-003", Username: "rpatel", Name: "Ravi Patel", Email: "rpatel@healthpulse.dev", Role: "nurse", Department: "Cardiology"}, "nurse123"},
	}
	for _, s := range seed {
		d.users = append(d.users, &userRecord{User: s.user, PasswordHash: hashPassword(s.pw)})
	}
}

var (
	departments = []string{"ICU", "Cardiology", "Emergency", "General Medicine", "Surgery"}
	firstNames  = []string{"James", "Maria", "Wei", "Aisha", "Carlos", "Emma", "Noah", "Fatima", "Liam", "Olivia", "Hiro", "Sofia", "Ethan", "Priya", "Lucas", "Amara"}
	lastNames   = []string{"Smith", "Garcia", "Chen", "Johnson", "Okafor", "Brown", "Nguyen", "Kim", "Martinez", "Wilson", "Tanaka", "Ali", "Anderson", "Singh", "Lopez", "Murphy"}
	physicians  = []string{"Dr. Sarah Kim", "Dr. Paul Weber", "Dr. Ana Costa", "Dr. John Reyes", "Dr. Leila Haddad"}
	diagnoses   = []string{"Pneumonia", "Congestive heart failure", "Sepsis", "COPD exacerbation", "Acute kidney injury", "Atrial fibrillation", "GI bleed", "Stroke"}
	comorbids   = []string{"Hypertension", "Type 2 diabetes", "Chronic kidney disease", "Obesity", "Asthma", "Coronary artery disease"}
)

func (d *Dataset) seedPatients(rng *rand.Rand) {
	now := d.seededAt
	for i := 0; i < 40; i++ {
		dept := departments[rng.Intn(len(departments))]
		scores := &api.RiskScores{
			Deterioration: round2(rng.Float64()),
			Readmission:   round2(rng.Float64()),
			Sepsis:        round2(rng.Float64() * rng.Float64()),
			Timestamp:     now.Add(-time.Duration(rng.Intn(120)) * time.Minute).Format(time.RFC3339),
		}
		scores.AlertLevel = alertLevel(maxScore(scores))

		p := api.PatientDetail{
			Patient: api.Patient{
				PatientID:          fmt.Sprintf("P-%04d", 1001+i),
				MRN:                fmt.Sprintf("MRN%06d", 100000+rng.Intn(900000)),
				Name:               fmt.Sprintf("%s, %s", lastNames[rng.Intn(len(lastNames))], firstNames[rng.Intn(len(firstNames))]),
				Gender:             []string{"female", "male"}[rng.Intn(2)],
				Age:                25 + rng.Intn(70),
				Department:         dept,
				Room:               fmt.Sprintf("%d%02d", 1+rng.Intn(5), 1+rng.Intn(30)),
				AdmissionDate:      now.AddDate(0, 0, -rng.Intn(14)).Format("2006-01-02"),
				AttendingPhysician: physicians[rng.Intn(len(physicians))],
				RiskScores:         scores,
			},
			Diagnoses:     pick(rng, diagnoses, 1+rng.Intn(2)),
			Comorbidities: pick(rng, comorbids, rng.Intn(3)),
			Vitals:        seedVitals(rng, now),
			Labs:          seedLabs(rng, now),
			Medications:   seedMedications(rng, now),
			Alerts:        []api.Alert{},
		}
		d.patients = append(d.patients, p)

		// High scores spawn an active alert, the way the platform's
		// alert engine would.
		for _, rt := range []api.RiskType{api.RiskDeterioration, api.RiskReadmission, api.RiskSepsis} {
			score := scoreFor(scores, rt)
			if score < d.thresholds.Thresholds[string(rt)]["medium"] {
				continue
			}
			a := api.Alert{
				ID:                d.nextAlertID,
				PatientID:         p.PatientID,
				Timestamp:         now.Add(-time.Duration(rng.Intn(360)) * time.Minute).Format(time.RFC3339),
				RiskType:          rt,
				RiskScore:         score,
				Priority:          priorityFor(score, d.thresholds.Thresholds[string(rt)]),
				Message:           fmt.Sprintf("Elevated %s risk for %s", rt, p.Name),
				RecommendedAction: recommendationFor(rt),
				Status:            api.AlertActive,
			}
			d.nextAlertID++
			d.alerts = append(d.alerts, a)
		}
	}
	// Attach each patient's alerts to its detail record.
	for i := range d.patients {
		for _, a := range d.alerts {
			if a.PatientID == d.patients[i].PatientID {
				d.patients[i].Alerts = append(d.patients[i].Alerts, a)
			}
		}
	}
}

func seedVitals(rng *rand.Rand, now time.Time) *api.Vitals {
	return &api.Vitals{
		HeartRate:       float64(55 + rng.Intn(70)),
		SystolicBP:      float64(85 + rng.Intn(70)),
		DiastolicBP:     float64(55 + rng.Intn(45)),
		Temperature:     round1(36.0 + rng.Float64()*2.5),
		RespirationRate: float64(10 + rng.Intn(16)),
		O2Saturation:    float64(88 + rng.Intn(12)),
		PainLevel:       rng.Intn(8),
		Timestamp:       now.Add(-time.Duration(rng.Intn(60)) * time.Minute).Format(time.RFC3339),
	}
}

func seedLabs(rng *rand.Rand, now time.Time) []api.Lab {
	type ref struct {
		name string
		unit string
		lo   float64
		hi   float64
	}
	refs := []ref{
		{"WBC", "10^9/L", 4.0, 11.0},
		{"Hemoglobin", "g/dL", 12.0, 17.5},
		{"Creatinine", "mg/dL", 0.6, 1.3},
		{"Lactate", "mmol/L", 0.5, 2.2},
		{"CRP", "mg/L", 0.0, 10.0},
	}
	labs := make([]api.Lab, 0, len(refs))
	for _, r := range refs {
		span := r.hi - r.lo
		v := round1(r.lo - span*0.3 + rng.Float64()*span*1.6)
		labs = append(labs, api.Lab{
			TestName:   r.name,
			Value:      v,
			Unit:       r.unit,
			Timestamp:  now.Add(-time.Duration(1+rng.Intn(12)) * time.Hour).Format(time.RFC3339),
			IsAbnormal: v < r.lo || v > r.hi,
		})
	}
	return labs
}

func seedMedications(rng *rand.Rand, now time.Time) []api.Medication {
	pool := []api.Medication{
		{Name: "Ceftriaxone", Dosage: "1 g", Frequency: "q24h", Route: "IV"},
		{Name: "Furosemide", Dosage: "40 mg", Frequency: "q12h", Route: "IV"},
		{Name: "Metoprolol", Dosage: "25 mg", Frequency: "q12h", Route: "PO"},
		{Name: "Insulin glargine", Dosage: "10 units", Frequency: "qHS", Route: "SC"},
		{Name: "Enoxaparin", Dosage: "40 mg", Frequency: "q24h", Route: "SC"},
		{Name: "Piperacillin-tazobactam", Dosage: "4.5 g", Frequency: "q8h", Route: "IV"},
	}
	n := 1 + rng.Intn(3)
	meds := pick2(rng, pool, n)
	for i := range meds {
		meds[i].StartDate = now.AddDate(0, 0, -rng.Intn(7)).Format("2006-01-02")
	}
	return meds
}

func pick(rng *rand.Rand, pool []string, n int) []string {
	idx := rng.Perm(len(pool))
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out
}

func pick2(rng *rand.Rand, pool []api.Medication, n int) []api.Medication {
	idx := rng.Perm(len(pool))
	out := make([]api.Medication, 0, n)
	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out
}

func round1(f float64) float64 { return float64(int(f*10+0.5)) / 10 }
func round2(f float64) float64 { return float64(int(f*100+0.5)) / 100 }

func maxScore(s *api.RiskScores) float64 {
	m := s.Deterioration
	if s.Readmission > m {
		m = s.Readmission
	}
	if s.Sepsis > m {
		m = s.Sepsis
	}
	return m
}

func scoreFor(s *api.RiskScores, rt api.RiskType) float64 {
	switch rt {
	case api.RiskDeterioration:
		return s.Deterioration
	case api.RiskReadmission:
		return s.Readmission
	case api.RiskSepsis:
		return s.Sepsis
	}
	return 0
}

func alertLevel(score float64) string {
	switch {
	case score >= 0.70:
		return "high"
	case score >= 0.40:
		return "medium"
	}
	return "low"
}

func priorityFor(score float64, cutoffs map[string]float64) string {
	switch {
	case score >= cutoffs["high"]:
		return "high"
	case score >= cutoffs["medium"]:
		return "medium"
	}
	return "low"
}

func recommendationFor(rt api.RiskType) string {
	switch rt {
	case api.RiskSepsis:
		return "Draw blood cultures and lactate; review sepsis bundle."
	case api.RiskReadmission:
		return "Review discharge plan and schedule early follow-up."
	}
	return "Increase vitals monitoring frequency and notify attending."
}

// Authenticate verifies a username/password pair.
func (d *Dataset) Authenticate(username, password string) (*api.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Username == username && checkPassword(u.PasswordHash, password) {
			u.LastLogin = time.Now().UTC().Format(time.RFC3339)
			out := u.User
			return &out, nil
		}
	}
	return nil, ErrBadCredentials
}

// UserByUsername resolves a token subject to its account.
func (d *Dataset) UserByUsername(username string) (*api.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.Username == username {
			out := u.User
			return &out, true
		}
	}
	return nil, false
}

// VerifyPassword checks the current password for a change-password call.
func (d *Dataset) VerifyPassword(username, password string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.Username == username {
			return checkPassword(u.PasswordHash, password)
		}
	}
	return false
}

// SetPassword replaces a user's password.
func (d *Dataset) SetPassword(username, password string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Username == username {
			u.PasswordHash = hashPassword(password)
			return
		}
	}
}

// Users returns an offset page of accounts ordered by name.
func (d *Dataset) Users(skip, limit int) []api.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	all := make([]api.User, 0, len(d.users))
	for _, u := range d.users {
		all = append(all, u.User)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	if skip >= len(all) {
		return []api.User{}
	}
	all = all[skip:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

// CreateUser provisions a new account; usernames are unique.
func (d *Dataset) CreateUser(uc api.UserCreate) (*api.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Username == uc.Username {
			return nil, ErrDuplicateUsername
		}
	}
	rec := &userRecord{
		User: api.User{
			ID:         "u-" + uuid.NewString()[:8],
			Username:   uc.Username,
			Name:       uc.Name,
			Email:      uc.Email,
			Role:       uc.Role,
			Department: uc.Department,
		},
		PasswordHash: hashPassword(uc.Password),
	}
	d.users = append(d.users, rec)
	out := rec.User
	return &out, nil
}

// UpdateProfile applies a partial patch to a user's profile fields.
func (d *Dataset) UpdateProfile(username string, up api.ProfileUpdate) (*api.User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Username != username {
			continue
		}
		if up.Name != "" {
			u.Name = up.Name
		}
		if up.Email != "" {
			u.Email = up.Email
		}
		if up.Department != "" {
			u.Department = up.Department
		}
		out := u.User
		return &out, true
	}
	return nil, false
}

// ListPatients filters and pages the census.
func (d *Dataset) ListPatients(page, pageSize int, search, department, riskLevel string) api.PatientList {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	search = strings.ToLower(search)

	matched := make([]api.Patient, 0, len(d.patients))
	for _, p := range d.patients {
		if department != "" && p.Department != department {
			continue
		}
		if riskLevel != "" && (p.RiskScores == nil || p.RiskScores.AlertLevel != riskLevel) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.MRN), search) &&
			!strings.Contains(strings.ToLower(p.PatientID), search) {
			continue
		}
		matched = append(matched, p.Patient)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].PatientID < matched[j].PatientID })

	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return api.PatientList{
		Patients:   matched[start:end],
		TotalCount: total,
		TotalPages: totalPages,
	}
}

// PatientByID returns the full detail aggregate.
func (d *Dataset) PatientByID(id string) (*api.PatientDetail, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.patients {
		if d.patients[i].PatientID == id {
			out := d.patients[i]
			return &out, true
		}
	}
	return nil, false
}

// HighRisk returns patients whose worst score clears the high cutoff,
// most severe first.
func (d *Dataset) HighRisk(department string) []api.Patient {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cutoff := d.thresholds.Thresholds["deterioration"]["high"]
	out := make([]api.Patient, 0)
	for _, p := range d.patients {
		if department != "" && p.Department != department {
			continue
		}
		if p.RiskScores == nil || maxScore(p.RiskScores) < cutoff {
			continue
		}
		out = append(out, p.Patient)
	}
	sort.Slice(out, func(i, j int) bool {
		return maxScore(out[i].RiskScores) > maxScore(out[j].RiskScores)
	})
	return out
}

// Predict returns the stored model score for one patient and risk type.
func (d *Dataset) Predict(rt api.RiskType, patientID string) (*api.RiskPrediction, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, p := range d.patients {
		if p.PatientID != patientID || p.RiskScores == nil {
			continue
		}
		return &api.RiskPrediction{
			PatientID: patientID,
			RiskType:  rt,
			Score:     scoreFor(p.RiskScores, rt),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}, true
	}
	return nil, false
}

var globalImportance = map[api.RiskType][]api.FeatureImportance{
	api.RiskDeterioration: {
		{Feature: "heart_rate_trend", Importance: 0.24},
		{Feature: "respiration_rate", Importance: 0.19},
		{Feature: "o2_saturation", Importance: 0.17},
		{Feature: "lactate", Importance: 0.14},
		{Feature: "age", Importance: 0.09},
	},
	api.RiskReadmission: {
		{Feature: "prior_admissions", Importance: 0.27},
		{Feature: "comorbidity_count", Importance: 0.21},
		{Feature: "length_of_stay", Importance: 0.15},
		{Feature: "age", Importance: 0.12},
		{Feature: "discharge_disposition", Importance: 0.10},
	},
	api.RiskSepsis: {
		{Feature: "lactate", Importance: 0.26},
		{Feature: "wbc", Importance: 0.22},
		{Feature: "temperature", Importance: 0.18},
		{Feature: "heart_rate", Importance: 0.13},
		{Feature: "crp", Importance: 0.11},
	},
}

// Explain builds a per-patient explanation from the stored features.
func (d *Dataset) Explain(rt api.RiskType, patientID string) (*api.RiskExplanation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, p := range d.patients {
		if p.PatientID != patientID || p.RiskScores == nil {
			continue
		}
		score := scoreFor(p.RiskScores, rt)
		contribs := []api.FeatureContribution{
			{Feature: "heart_rate", Value: p.Vitals.HeartRate, Contribution: round2((p.Vitals.HeartRate - 80) / 200)},
			{Feature: "o2_saturation", Value: p.Vitals.O2Saturation, Contribution: round2((95 - p.Vitals.O2Saturation) / 50)},
			{Feature: "temperature", Value: p.Vitals.Temperature, Contribution: round2((p.Vitals.Temperature - 37.0) / 10)},
			{Feature: "age", Value: float64(p.Age), Contribution: round2(float64(p.Age-50) / 500)},
			{Feature: "respiration_rate", Value: p.Vitals.RespirationRate, Contribution: round2((p.Vitals.RespirationRate - 16) / 100)},
		}
		return &api.RiskExplanation{
			PatientID:        patientID,
			RiskType:         rt,
			Score:            score,
			GlobalImportance: globalImportance[rt],
			PatientSpecific:  contribs,
			Recommendation:   recommendationFor(rt),
		}, true
	}
	return nil, false
}

var priorityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// ListAlerts filters the alert population and returns it in clinical
// order, highest priority then newest first, plus rollup stats over the
// filtered set.
func (d *Dataset) ListAlerts(status api.AlertStatus, priority, patientID string, page, pageSize int) api.AlertList {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	matched := make([]api.Alert, 0, len(d.alerts))
	for _, a := range d.alerts {
		if status != "" && a.Status != status {
			continue
		}
		if priority != "" && a.Priority != priority {
			continue
		}
		if patientID != "" && a.PatientID != patientID {
			continue
		}
		matched = append(matched, a)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		ri, rj := priorityRank[matched[i].Priority], priorityRank[matched[j].Priority]
		if ri != rj {
			return ri < rj
		}
		return matched[i].Timestamp > matched[j].Timestamp
	})

	stats := &api.AlertStats{
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
	}
	for _, a := range matched {
		stats.ByStatus[string(a.Status)]++
		stats.ByPriority[a.Priority]++
	}

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return api.AlertList{Alerts: matched[start:end], TotalCount: total, Stats: stats}
}

// UpdateAlert moves an alert through its lifecycle, enforcing the
// transition rules server-side as well.
func (d *Dataset) UpdateAlert(id int, update api.AlertUpdate) (*api.Alert, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.alerts {
		if d.alerts[i].ID != id {
			continue
		}
		if !d.alerts[i].Status.CanTransition(update.Status) {
			return nil, &TransitionError{From: d.alerts[i].Status, To: update.Status}
		}
		d.alerts[i].Status = update.Status
		if update.Notes != "" {
			d.alerts[i].Notes = update.Notes
		}
		out := d.alerts[i]
		return &out, nil
	}
	return nil, ErrNotFound
}

// RecentAlerts returns the newest alerts regardless of priority.
func (d *Dataset) RecentAlerts(limit int) []api.Alert {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if limit < 1 {
		limit = 10
	}
	out := make([]api.Alert, len(d.alerts))
	copy(out, d.alerts)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if limit < len(out) {
		out = out[:limit]
	}
	return out
}

// AppendAudit records one audit row.
func (d *Dataset) AppendAudit(userID, username, name, action, entityType, entityID, ip string, details map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.audit = append(d.audit, api.AuditLogEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		Username:   username,
		UserName:   name,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  ip,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// AuditLogs returns the trail newest first, with optional filters and
// offset paging.
func (d *Dataset) AuditLogs(userID, entityType string, skip, limit int) []api.AuditLogEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	matched := make([]api.AuditLogEntry, 0, len(d.audit))
	for _, e := range d.audit {
		if userID != "" && e.UserID != userID {
			continue
		}
		if entityType != "" && e.EntityType != entityType {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp > matched[j].Timestamp })
	if skip >= len(matched) {
		return []api.AuditLogEntry{}
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched
}

// Thresholds returns a copy of the configured cutoffs.
func (d *Dataset) Thresholds() api.AlertThresholds {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := api.AlertThresholds{Thresholds: map[string]map[string]float64{}}
	for rt, levels := range d.thresholds.Thresholds {
		out.Thresholds[rt] = map[string]float64{}
		for lvl, v := range levels {
			out.Thresholds[rt][lvl] = v
		}
	}
	return out
}

// MergeThresholds applies a partial patch and returns the full result.
func (d *Dataset) MergeThresholds(patch api.AlertThresholds) api.AlertThresholds {
	d.mu.Lock()
	for rt, levels := range patch.Thresholds {
		if _, ok := d.thresholds.Thresholds[rt]; !ok {
			d.thresholds.Thresholds[rt] = map[string]float64{}
		}
		for lvl, v := range levels {
			d.thresholds.Thresholds[rt][lvl] = v
		}
	}
	d.mu.Unlock()
	return d.Thresholds()
}

// Summary computes the landing-page counters.
func (d *Dataset) Summary(department string) api.DashboardSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cutoff := d.thresholds.Thresholds["deterioration"]["high"]
	out := api.DashboardSummary{Departments: append([]string{}, departments...)}
	for _, p := range d.patients {
		if department != "" && p.Department != department {
			continue
		}
		out.TotalPatients++
		if p.RiskScores != nil && maxScore(p.RiskScores) >= cutoff {
			out.HighRiskCount++
		}
	}
	for _, a := range d.alerts {
		if a.Status != api.AlertActive {
			continue
		}
		if department != "" {
			if p, ok := d.patientLocked(a.PatientID); !ok || p.Department != department {
				continue
			}
		}
		out.ActiveAlertCount++
	}
	return out
}

func (d *Dataset) patientLocked(id string) (*api.PatientDetail, bool) {
	for i := range d.patients {
		if d.patients[i].PatientID == id {
			return &d.patients[i], true
		}
	}
	return nil, false
}

// RiskDistribution buckets the census for one model.
func (d *Dataset) RiskDistribution(rt api.RiskType, department string) api.RiskDistribution {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cutoffs := d.thresholds.Thresholds[string(rt)]
	out := api.RiskDistribution{
		RiskType: rt,
		Buckets:  map[string]int{"low": 0, "medium": 0, "high": 0},
	}
	for _, p := range d.patients {
		if department != "" && p.Department != department {
			continue
		}
		if p.RiskScores == nil {
			continue
		}
		out.Buckets[priorityFor(scoreFor(p.RiskScores, rt), cutoffs)]++
	}
	return out
}

// Trends synthesizes a metric series for the dashboard charts.
func (d *Dataset) Trends(metric, period string) api.TrendSeries {
	var points int
	var step time.Duration
	switch period {
	case "7d":
		points, step = 7, 24*time.Hour
	case "30d":
		points, step = 30, 24*time.Hour
	default:
		period = "24h"
		points, step = 24, time.Hour
	}
	rng := rand.New(rand.NewSource(int64(len(metric) + points)))
	now := time.Now().UTC()
	series := api.TrendSeries{Metric: metric, Period: period}
	base := 0.3 + rng.Float64()*0.3
	for i := points - 1; i >= 0; i-- {
		series.Points = append(series.Points, api.TrendPoint{
			Timestamp: now.Add(-time.Duration(i) * step).Format(time.RFC3339),
			Value:     round2(base + rng.Float64()*0.2),
		})
	}
	return series
}

// Performance computes per-department operational rollups.
func (d *Dataset) Performance(department string) []api.DepartmentPerformance {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cutoff := d.thresholds.Thresholds["deterioration"]["high"]
	out := make([]api.DepartmentPerformance, 0, len(departments))
	for _, dept := range departments {
		if department != "" && dept != department {
			continue
		}
		perf := api.DepartmentPerformance{Department: dept}
		var sum float64
		for _, p := range d.patients {
			if p.Department != dept || p.RiskScores == nil {
				continue
			}
			perf.PatientCount++
			m := maxScore(p.RiskScores)
			sum += m
			if m >= cutoff {
				perf.HighRiskCount++
			}
		}
		if perf.PatientCount > 0 {
			perf.AvgRiskScore = round2(sum / float64(perf.PatientCount))
		}
		perf.AlertResponseMin = round1(5 + float64(perf.HighRiskCount)*1.5)
		out = append(out, perf)
	}
	return out
}
