package calibrationRepository

const (
	queryCreateCalibration = `
		INSERT INTO calibrations (
			id,
			user_id,
			video_source,
			method,
			source,
			destination,
			projected,
			created_at,
			updated_at
		) VALUES (
			:id,
			:user_id,
			:video_source,
			:method,
			:source,
			:destination,
			:projected,
			:created_at,
			:updated_at
		)
	`

	queryGetCalibrationByID = `
		SELECT
			id,
			user_id,
			video_source,
			method,
			source,
			destination,
			projected,
			created_at,
			updated_at
		FROM calibrations
		WHERE id = :id
	`

	queryGetCalibrationsByUserID = `
		SELECT
			id,
			user_id,
			video_source,
			method,
			source,
			destination,
			projected,
			created_at,
			updated_at
		FROM calibrations
		WHERE user_id = :user_id
		ORDER BY created_at DESC
	`

	queryGetCalibrationsByUserIDAndSource = `
		SELECT
			id,
			user_id,
			video_source,
			method,
			source,
			destination,
			projected,
			created_at,
			updated_at
		FROM calibrations
		WHERE
			user_id = :user_id
			AND video_source = :video_source
		ORDER BY created_at DESC
	`

	queryUpdateCalibration = `
		UPDATE calibrations
		SET
			method = :method,
			source = :source,
			destination = :destination,
			projected = :projected,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryDeleteCalibration = `
		DELETE FROM calibrations
		WHERE id = :id
	`
)
