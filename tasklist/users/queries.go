package users

const (
	userColumns = `id, email, password_hash, google_id, created_at`

	queryFindByEmail = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	queryFindByGoogleID = `
		SELECT ` + userColumns + `
		FROM users
		WHERE google_id = $1
	`

	queryFindByID = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	queryCreate = `
		INSERT INTO users (email, password_hash, google_id)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	// only fills an empty slot; a concurrent linker makes this affect zero rows
	queryAttachGoogleID = `
		UPDATE users
		SET google_id = $1
		WHERE id = $2 AND google_id IS NULL
		RETURNING ` + userColumns
)
