package calibrationRepository

import (
	"PoseAlign/internal/api/calibration"
	"PoseAlign/internal/entity"
	contextPkg "PoseAlign/pkg/context"
	"PoseAlign/pkg/perspective"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type CalibrationDB struct {
	ID          sql.NullString `db:"id"`
	UserID      sql.NullString `db:"user_id"`
	VideoSource sql.NullString `db:"video_source"`
	Method      sql.NullString `db:"method"`
	Source      []byte         `db:"source"`
	Destination []byte         `db:"destination"`
	Projected   []byte         `db:"projected"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r *calibrationRepository) CreateCalibration(c context.Context, cal entity.Calibration) error {
	requestID := contextPkg.GetRequestID(c)

	argsKV, err := calibrationArgs(cal)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to encode calibration quads")
		return err
	}
	argsKV["user_id"] = cal.UserID
	argsKV["video_source"] = string(cal.VideoSource)
	argsKV["created_at"] = cal.CreatedAt

	query, args, err := sqlx.Named(queryCreateCalibration, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateCalibration")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating calibration")
		return err
	}

	return nil
}

func (r *calibrationRepository) GetCalibrationByID(c context.Context, id string) (entity.Calibration, error) {
	requestID := contextPkg.GetRequestID(c)
	var row CalibrationDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetCalibrationByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCalibrationByID named query preparation err")
		return entity.Calibration{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id":     requestID,
				"calibration_id": id,
			}).Warn("GetCalibrationByID no rows found")
			return entity.Calibration{}, calibration.ErrCalibrationNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCalibrationByID execution err")
		return entity.Calibration{}, err
	}

	return r.makeCalibration(row)
}

func (r *calibrationRepository) GetCalibrationsByUserID(c context.Context, userID string, videoSource string) ([]entity.Calibration, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []CalibrationDB

	argsKV := map[string]interface{}{
		"user_id": userID,
	}

	queryToUse := queryGetCalibrationsByUserID
	if videoSource != "" {
		queryToUse = queryGetCalibrationsByUserIDAndSource
		argsKV["video_source"] = videoSource
	}

	query, args, err := sqlx.Named(queryToUse, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCalibrationsByUserID named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"error":        err.Error(),
			"video_source": videoSource,
		}).Error("GetCalibrationsByUserID execution err")
		return nil, err
	}

	result := make([]entity.Calibration, 0, len(rows))
	for _, row := range rows {
		cal, err := r.makeCalibration(row)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id":     requestID,
				"calibration_id": row.ID.String,
				"error":          err.Error(),
			}).Error("Skipping calibration with unreadable quads")
			continue
		}
		result = append(result, cal)
	}

	return result, nil
}

func (r *calibrationRepository) UpdateCalibration(c context.Context, cal entity.Calibration) error {
	requestID := contextPkg.GetRequestID(c)

	argsKV, err := calibrationArgs(cal)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to encode calibration quads")
		return err
	}

	query, args, err := sqlx.Named(queryUpdateCalibration, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateCalibration named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateCalibration execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateCalibration rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id":     requestID,
			"calibration_id": cal.ID,
		}).Warn("UpdateCalibration no rows affected")
		return calibration.ErrCalibrationNotFound
	}

	return nil
}

func (r *calibrationRepository) DeleteCalibration(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteCalibration, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteCalibration named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteCalibration execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return calibration.ErrCalibrationNotFound
	}

	return nil
}

// calibrationArgs holds the columns shared by insert and update. Quads go to
// jsonb as text; lib/pq would send a []byte as bytea.
func calibrationArgs(cal entity.Calibration) (map[string]interface{}, error) {
	source, err := json.Marshal(cal.Source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	destination, err := json.Marshal(cal.Destination)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	projected, err := json.Marshal(cal.Projected)
	if err != nil {
		return nil, fmt.Errorf("projected: %w", err)
	}

	return map[string]interface{}{
		"id":          cal.ID,
		"method":      string(cal.Method),
		"source":      string(source),
		"destination": string(destination),
		"projected":   string(projected),
		"updated_at":  cal.UpdatedAt,
	}, nil
}

func (r *calibrationRepository) makeCalibration(row CalibrationDB) (entity.Calibration, error) {
	cal := entity.Calibration{
		ID:          row.ID.String,
		UserID:      row.UserID.String,
		VideoSource: entity.VideoSource(row.VideoSource.String),
		Method:      perspective.Method(row.Method.String),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}

	if err := json.Unmarshal(row.Source, &cal.Source); err != nil {
		return entity.Calibration{}, fmt.Errorf("source: %w", err)
	}
	if err := json.Unmarshal(row.Destination, &cal.Destination); err != nil {
		return entity.Calibration{}, fmt.Errorf("destination: %w", err)
	}
	if err := json.Unmarshal(row.Projected, &cal.Projected); err != nil {
		return entity.Calibration{}, fmt.Errorf("projected: %w", err)
	}

	return cal, nil
}
