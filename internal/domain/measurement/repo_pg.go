package measurement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type measurementRepoPG struct{ pool *pgxpool.Pool }

func NewMeasurementRepoPG(pool *pgxpool.Pool) MeasurementRepository {
	return &measurementRepoPG{pool: pool}
}

const measurementCols = `id, patient_id, evaluation_date, weight_kg, height_cm, protocol,
	chest_mm, abdomen_mm, triceps_mm, midaxillary_mm, subscapular_mm, suprailiac_mm, thigh_mm,
	created_at, updated_at`

func (r *measurementRepoPG) scanRow(row pgx.Row) (*Measurement, error) {
	var m Measurement
	err := row.Scan(&m.ID, &m.PatientID, &m.EvaluationDate, &m.WeightKg, &m.HeightCm, &m.Protocol,
		&m.Chest, &m.Abdomen, &m.Triceps, &m.Midaxillary, &m.Subscapular, &m.Suprailiac, &m.Thigh,
		&m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *measurementRepoPG) InsertOrReplace(ctx context.Context, m *Measurement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO measurements (id, patient_id, evaluation_date, weight_kg, height_cm, protocol,
			chest_mm, abdomen_mm, triceps_mm, midaxillary_mm, subscapular_mm, suprailiac_mm, thigh_mm)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			patient_id=EXCLUDED.patient_id, evaluation_date=EXCLUDED.evaluation_date,
			weight_kg=EXCLUDED.weight_kg, height_cm=EXCLUDED.height_cm, protocol=EXCLUDED.protocol,
			chest_mm=EXCLUDED.chest_mm, abdomen_mm=EXCLUDED.abdomen_mm, triceps_mm=EXCLUDED.triceps_mm,
			midaxillary_mm=EXCLUDED.midaxillary_mm, subscapular_mm=EXCLUDED.subscapular_mm,
			suprailiac_mm=EXCLUDED.suprailiac_mm, thigh_mm=EXCLUDED.thigh_mm,
			updated_at=NOW()`,
		m.ID, m.PatientID, m.EvaluationDate, m.WeightKg, m.HeightCm, m.Protocol,
		m.Chest, m.Abdomen, m.Triceps, m.Midaxillary, m.Subscapular, m.Suprailiac, m.Thigh)
	return err
}

func (r *measurementRepoPG) Update(ctx context.Context, m *Measurement) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE measurements SET evaluation_date=$2, weight_kg=$3, height_cm=$4, protocol=$5,
			chest_mm=$6, abdomen_mm=$7, triceps_mm=$8, midaxillary_mm=$9, subscapular_mm=$10,
			suprailiac_mm=$11, thigh_mm=$12, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.EvaluationDate, m.WeightKg, m.HeightCm, m.Protocol,
		m.Chest, m.Abdomen, m.Triceps, m.Midaxillary, m.Subscapular, m.Suprailiac, m.Thigh)
	return err
}

func (r *measurementRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM measurements WHERE id = $1`, id)
	return err
}

func (r *measurementRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Measurement, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+measurementCols+` FROM measurements WHERE id = $1`, id))
}

func (r *measurementRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Measurement, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM measurements WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+measurementCols+` FROM measurements
		WHERE patient_id = $1 ORDER BY evaluation_date ASC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Measurement
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *measurementRepoPG) First(ctx context.Context, patientID uuid.UUID) (*Measurement, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+measurementCols+` FROM measurements
		WHERE patient_id = $1 ORDER BY evaluation_date ASC LIMIT 1`, patientID))
}

func (r *measurementRepoPG) Last(ctx context.Context, patientID uuid.UUID) (*Measurement, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+measurementCols+` FROM measurements
		WHERE patient_id = $1 ORDER BY evaluation_date DESC LIMIT 1`, patientID))
}

func (r *measurementRepoPG) Before(ctx context.Context, patientID uuid.UUID, date time.Time) (*Measurement, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+measurementCols+` FROM measurements
		WHERE patient_id = $1 AND evaluation_date < $2 ORDER BY evaluation_date DESC LIMIT 1`, patientID, date))
}
