package models

// WorkingHours defines one weekday's opening window in "HH:MM" clinic time.
type WorkingHours struct {
	Open  string `bson:"open" json:"open"`
	Close string `bson:"close" json:"close"`
}

// AppointmentPolicy holds per-clinic scheduling rules. Zero values fall back
// to the configured defaults.
type AppointmentPolicy struct {
	MinAdvanceHours        int `bson:"min_advance_hours,omitempty" json:"min_advance_hours,omitempty"`
	MaxAdvanceDays         int `bson:"max_advance_days,omitempty" json:"max_advance_days,omitempty"`
	SlotGranularityMinutes int `bson:"slot_granularity_minutes,omitempty" json:"slot_granularity_minutes,omitempty"`
	BufferMinutes          int `bson:"buffer_minutes,omitempty" json:"buffer_minutes,omitempty"`
	MaxDailyAppointments   int `bson:"max_daily_appointments,omitempty" json:"max_daily_appointments,omitempty"`
}

// Clinic is a read-only directory entry: identity, timezone, weekly working
// hours keyed by lowercase weekday name, holiday dates ("YYYY-MM-DD") and
// the appointment policy.
type Clinic struct {
	ID           string                  `bson:"id" json:"id"`
	Name         string                  `bson:"name" json:"name"`
	Email        string                  `bson:"email,omitempty" json:"email,omitempty"`
	Timezone     string                  `bson:"timezone" json:"timezone"`
	WorkingHours map[string]WorkingHours `bson:"working_hours" json:"working_hours"`
	Holidays     []string                `bson:"holidays,omitempty" json:"holidays,omitempty"`
	Policy       AppointmentPolicy       `bson:"policy" json:"policy"`
}

// Professional is a clinic staff member who can be booked.
type Professional struct {
	ID                 string   `bson:"id" json:"id"`
	ClinicID           string   `bson:"clinic_id" json:"clinic_id"`
	Name               string   `bson:"name" json:"name"`
	Specialties        []string `bson:"specialties,omitempty" json:"specialties,omitempty"`
	IsActive           bool     `bson:"is_active" json:"is_active"`
	AcceptsNewPatients bool     `bson:"accepts_new_patients" json:"accepts_new_patients"`
}

// Service is a bookable clinic service.
type Service struct {
	ID              string `bson:"id" json:"id"`
	ClinicID        string `bson:"clinic_id" json:"clinic_id"`
	Name            string `bson:"name" json:"name"`
	Category        string `bson:"category,omitempty" json:"category,omitempty"`
	Specialty       string `bson:"specialty,omitempty" json:"specialty,omitempty"`
	DurationMinutes int    `bson:"duration_minutes" json:"duration_minutes"`
	IsActive        bool   `bson:"is_active" json:"is_active"`
}
