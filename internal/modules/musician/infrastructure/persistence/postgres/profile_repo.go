package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/beatmatch/backend/internal/modules/musician/domain"
)

type PgProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new PostgreSQL-based musician profile repository.
func NewProfileRepository(db *sqlx.DB) *PgProfileRepository {
	return &PgProfileRepository{db: db}
}

// GetByUserID loads the user's musician profile.
func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.MusicianProfile, error) {
	profile := &domain.MusicianProfile{}
	query := `SELECT * FROM musician_profiles WHERE user_id = $1`
	err := r.db.GetContext(ctx, profile, query, userID)
	if err == sql.ErrNoRows {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Create inserts the profile and marks the owning user as a musician. The two
// writes share a transaction so a half-created musician never exists.
func (r *PgProfileRepository) Create(ctx context.Context, profile *domain.MusicianProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	profile.UpdatedAt = time.Now()
	profile.IsActive = false

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO musician_profiles (
            id, user_id, instrument, music_type, experience_years, profile_picture,
            bio, is_singer, event_types, locations, whatsapp_link,
            gallery_pictures, gallery_videos, youtube_links, is_active,
            created_at, updated_at
        ) VALUES (
            :id, :user_id, :instrument, :music_type, :experience_years, :profile_picture,
            :bio, :is_singer, :event_types, :locations, :whatsapp_link,
            :gallery_pictures, :gallery_videos, :youtube_links, :is_active,
            :created_at, :updated_at
        )`
	if _, err := tx.NamedExecContext(ctx, query, profile); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET is_musician = TRUE, updated_at = $2 WHERE id = $1`, profile.UserID, time.Now()); err != nil {
		return err
	}

	return tx.Commit()
}

// Update applies a partial patch. Only non-nil fields touch the stored row; an
// explicitly empty value overwrites. The owning user is (re)marked a musician.
func (r *PgProfileRepository) Update(ctx context.Context, userID uuid.UUID, patch domain.ProfilePatch) (*domain.MusicianProfile, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	addString := func(column string, value *string) {
		if value != nil {
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
			args = append(args, *value)
			argIndex++
		}
	}
	addArray := func(column string, value *[]string) {
		if value != nil {
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
			args = append(args, pq.Array(*value))
			argIndex++
		}
	}

	addString("instrument", patch.Instrument)
	addString("music_type", patch.MusicType)
	addString("experience_years", patch.ExperienceYears)
	addString("profile_picture", patch.ProfilePicture)
	addString("bio", patch.Bio)
	if patch.IsSinger != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_singer = $%d", argIndex))
		args = append(args, *patch.IsSinger)
		argIndex++
	}
	addArray("event_types", patch.EventTypes)
	addArray("locations", patch.Locations)
	addString("whatsapp_link", patch.WhatsappLink)
	addArray("gallery_pictures", patch.GalleryPictures)
	addArray("gallery_videos", patch.GalleryVideos)
	addArray("youtube_links", patch.YoutubeLinks)

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now())
	argIndex++

	args = append(args, userID)
	query := fmt.Sprintf("UPDATE musician_profiles SET %s WHERE user_id = $%d",
		strings.Join(setClauses, ", "), argIndex)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.ErrProfileNotFound
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET is_musician = TRUE, updated_at = $2 WHERE id = $1`, userID, time.Now()); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByUserID(ctx, userID)
}

// searchRow joins profile columns with the owner's public fields
type searchRow struct {
	domain.MusicianProfile
	UFirstName string  `db:"u_first_name"`
	ULastName  string  `db:"u_last_name"`
	UPhone     *string `db:"u_phone"`
}

// Search runs the musician discovery query. Only active profiles of musician
// users ever match, regardless of filter combination.
func (r *PgProfileRepository) Search(ctx context.Context, filters domain.SearchFilters) ([]domain.SearchResult, error) {
	query := `SELECT p.*, u.first_name AS u_first_name, u.last_name AS u_last_name, u.phone AS u_phone
	          FROM musician_profiles p
	          JOIN users u ON u.id = p.user_id
	          WHERE u.is_musician = TRUE AND p.is_active = TRUE`
	args := []interface{}{}
	argId := 1

	if q := strings.TrimSpace(filters.Query); q != "" {
		words := strings.Fields(q)
		if len(words) == 1 {
			query += fmt.Sprintf(" AND (u.first_name ILIKE $%d OR u.last_name ILIKE $%d)", argId, argId)
			args = append(args, contains(words[0]))
			argId++
		} else {
			// Two or more words: try first+last in both orderings
			firstThenLast := []string{contains(words[0]), contains(strings.Join(words[1:], " "))}
			lastThenFirst := []string{contains(words[len(words)-1]), contains(strings.Join(words[:len(words)-1], " "))}
			query += fmt.Sprintf(` AND ((u.first_name ILIKE $%d AND u.last_name ILIKE $%d)
			                        OR (u.first_name ILIKE $%d AND u.last_name ILIKE $%d))`,
				argId, argId+1, argId+2, argId+3)
			args = append(args, firstThenLast[0], firstThenLast[1], lastThenFirst[0], lastThenFirst[1])
			argId += 4
		}
	}

	if types := dropSentinel(filters.MusicTypes); len(types) > 0 {
		query += fmt.Sprintf(" AND p.music_type ILIKE ANY($%d)", argId)
		args = append(args, pq.Array(patterns(types)))
		argId++
	}

	if instruments := dropSentinel(filters.Instrument); len(instruments) > 0 {
		// A profile advertising the instrument wildcard matches every query
		query += fmt.Sprintf(" AND p.instrument ILIKE ANY($%d)", argId)
		args = append(args, pq.Array(append(patterns(instruments), contains(domain.InstrumentWildcard))))
		argId++
	}

	if events := dropSentinel(filters.EventTypes); len(events) > 0 {
		query += fmt.Sprintf(" AND p.event_types && $%d", argId)
		args = append(args, pq.Array(append(events, domain.FilterAll)))
		argId++
	}

	if filters.SingerOnly {
		query += " AND p.is_singer = TRUE"
	}

	if filters.Region != "" {
		query += fmt.Sprintf(" AND p.locations @> $%d", argId)
		args = append(args, pq.Array([]string{filters.Region}))
		argId++
	} else if loc := strings.TrimSpace(filters.Location); loc != "" {
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM unnest(p.locations) AS loc WHERE loc ILIKE $%d)", argId)
		args = append(args, contains(loc))
		argId++
	}

	query += " ORDER BY p.created_at DESC"

	var rows []searchRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.SearchResult{
			UserID:       row.UserID,
			FirstName:    row.UFirstName,
			LastName:     row.ULastName,
			PhoneNumber:  row.UPhone,
			ProfileImage: row.ProfilePicture,
			Profile:      row.MusicianProfile,
		})
	}
	return results, nil
}

// EnsureProfile creates an empty inactive profile when the user has none yet.
// Safe to call repeatedly.
func (r *PgProfileRepository) EnsureProfile(ctx context.Context, userID uuid.UUID) error {
	query := `INSERT INTO musician_profiles (id, user_id, is_active, created_at, updated_at)
	          VALUES ($1, $2, FALSE, $3, $3)
	          ON CONFLICT (user_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, uuid.New(), userID, time.Now())
	return err
}

// Activate flips the profile visible. Activating an already-active profile is
// a no-op, which is what makes the payment capture and webhook paths safe to
// replay.
func (r *PgProfileRepository) Activate(ctx context.Context, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE musician_profiles SET is_active = TRUE, updated_at = $2 WHERE user_id = $1`,
		userID, time.Now())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// HasActiveProfile reports whether the user owns an active paid profile.
func (r *PgProfileRepository) HasActiveProfile(ctx context.Context, userID uuid.UUID) (bool, error) {
	var active bool
	query := `SELECT EXISTS(SELECT 1 FROM musician_profiles WHERE user_id = $1 AND is_active = TRUE)`
	err := r.db.GetContext(ctx, &active, query, userID)
	return active, err
}

// SetProfilePicture overwrites the single profile-picture slot.
func (r *PgProfileRepository) SetProfilePicture(ctx context.Context, userID uuid.UUID, url string) error {
	if err := r.EnsureProfile(ctx, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE musician_profiles SET profile_picture = $2, updated_at = $3 WHERE user_id = $1`,
		userID, url, time.Now())
	return err
}

// AppendGalleryPicture appends to the gallery list.
func (r *PgProfileRepository) AppendGalleryPicture(ctx context.Context, userID uuid.UUID, url string) error {
	if err := r.EnsureProfile(ctx, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE musician_profiles SET gallery_pictures = array_append(gallery_pictures, $2), updated_at = $3 WHERE user_id = $1`,
		userID, url, time.Now())
	return err
}

// AddAvailability inserts a new availability window for a profile.
func (r *PgProfileRepository) AddAvailability(ctx context.Context, availability *domain.Availability) error {
	if availability.ID == uuid.Nil {
		availability.ID = uuid.New()
	}
	if availability.CreatedAt.IsZero() {
		availability.CreatedAt = time.Now()
	}
	availability.UpdatedAt = time.Now()

	query := `INSERT INTO availabilities (id, profile_id, date_from, date_to, start_time, end_time, kind, created_at, updated_at)
	          VALUES (:id, :profile_id, :date_from, :date_to, :start_time, :end_time, :kind, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, availability)
	return err
}

// ListAvailability returns the profile's windows ordered by start date.
func (r *PgProfileRepository) ListAvailability(ctx context.Context, profileID uuid.UUID) ([]domain.Availability, error) {
	availability := []domain.Availability{}
	query := `SELECT * FROM availabilities WHERE profile_id = $1 ORDER BY date_from, start_time`
	err := r.db.SelectContext(ctx, &availability, query, profileID)
	return availability, err
}

// UpdateAvailability patches the window identified by (profileID,
// availabilityID). Records under other profiles are unreachable by design.
func (r *PgProfileRepository) UpdateAvailability(ctx context.Context, profileID, availabilityID uuid.UUID, patch domain.AvailabilityPatch) (*domain.Availability, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	addString := func(column string, value *string) {
		if value != nil {
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
			args = append(args, *value)
			argIndex++
		}
	}
	addString("date_from", patch.From)
	addString("date_to", patch.To)
	addString("start_time", patch.StartTime)
	addString("end_time", patch.EndTime)
	addString("kind", patch.Kind)

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now())
	argIndex++

	args = append(args, availabilityID, profileID)
	query := fmt.Sprintf("UPDATE availabilities SET %s WHERE id = $%d AND profile_id = $%d",
		strings.Join(setClauses, ", "), argIndex, argIndex+1)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.ErrAvailabilityNotFound
	}

	updated := &domain.Availability{}
	err = r.db.GetContext(ctx, updated, `SELECT * FROM availabilities WHERE id = $1`, availabilityID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAvailability removes the window identified by (profileID, availabilityID).
func (r *PgProfileRepository) DeleteAvailability(ctx context.Context, profileID, availabilityID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM availabilities WHERE id = $1 AND profile_id = $2`, availabilityID, profileID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrAvailabilityNotFound
	}
	return nil
}

// SetUserPhone updates the phone stored on the owning user record.
func (r *PgProfileRepository) SetUserPhone(ctx context.Context, userID uuid.UUID, phone string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET phone = $2, updated_at = $3 WHERE id = $1`, userID, phone, time.Now())
	return err
}

func contains(s string) string {
	return "%" + strings.TrimSpace(s) + "%"
}

func patterns(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, contains(v))
	}
	return out
}

// dropSentinel filters empty entries and bypasses the whole filter when the
// "all" sentinel is present.
func dropSentinel(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.EqualFold(v, domain.FilterAll) {
			return nil
		}
		out = append(out, v)
	}
	return out
}
