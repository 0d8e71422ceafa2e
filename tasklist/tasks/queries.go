package tasks

const (
	taskColumns = `id, user_id, title, description, completed, created_at, updated_at`

	queryCreate = `
		INSERT INTO tasks (user_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING ` + taskColumns

	// %s is a whitelisted column and direction from ListOptions
	queryList = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND ($2::boolean IS NULL OR completed = $2)
		ORDER BY %s %s, id %s
	`

	queryGet = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	queryUpdate = `
		UPDATE tasks
		SET title = COALESCE($3, title),
			description = COALESCE($4, description),
			completed = COALESCE($5, completed),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns

	queryBulkUpdate = `
		UPDATE tasks
		SET title = COALESCE($3, title),
			description = COALESCE($4, description),
			completed = COALESCE($5, completed),
			updated_at = NOW()
		WHERE user_id = $1 AND id = ANY($2)
		RETURNING ` + taskColumns

	queryDelete = `
		DELETE FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	queryStats = `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
		FROM tasks
		WHERE user_id = $1
	`
)
