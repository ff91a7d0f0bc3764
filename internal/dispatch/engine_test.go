package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Rohith-2027/cab-booking-backend/internal/models"
)

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewEngine(db, nil), mock
}

func uintPtr(v uint) *uint        { return &v }
func floatPtr(v float64) *float64 { return &v }

func bookingColumns() []string {
	return []string{
		"id", "customer_id", "vendor_id", "driver_id", "vehicle_id",
		"pickup_location", "drop_location", "requested_vehicle_class",
		"distance_km", "target_pickup_time", "payment_mode", "status",
		"total_amount", "final_notification_sent",
	}
}

func bookingRow(b models.Booking) *sqlmock.Rows {
	return sqlmock.NewRows(bookingColumns()).AddRow(
		b.ID, b.CustomerID, b.VendorID, b.DriverID, b.VehicleID,
		b.PickupLocation, b.DropLocation, b.RequestedVehicleClass,
		b.DistanceKm, b.TargetPickupTime, b.PaymentMode, b.Status,
		b.TotalAmount, b.FinalNotificationSent,
	)
}

func TestCreateBookingValidation(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	customer := models.Actor{ID: 1, Role: models.RoleCustomer}

	valid := CreateBookingInput{
		PickupLocation:        "Airport",
		DropLocation:          "Downtown",
		RequestedVehicleClass: models.VehicleClassSedan,
		DistanceKm:            12,
		TargetPickupTime:      time.Now().Add(2 * time.Hour),
		PaymentMode:           models.PaymentModeCash,
	}

	t.Run("wrong role", func(t *testing.T) {
		_, err := engine.CreateBooking(ctx, models.Actor{ID: 1, Role: models.RoleDriver}, valid)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("missing pickup", func(t *testing.T) {
		in := valid
		in.PickupLocation = ""
		_, err := engine.CreateBooking(ctx, customer, in)
		assert.True(t, IsInvalidInput(err))
	})

	t.Run("bad vehicle class", func(t *testing.T) {
		in := valid
		in.RequestedVehicleClass = "tuktuk"
		_, err := engine.CreateBooking(ctx, customer, in)
		assert.True(t, IsInvalidInput(err))
	})

	t.Run("bad payment mode", func(t *testing.T) {
		in := valid
		in.PaymentMode = "cheque"
		_, err := engine.CreateBooking(ctx, customer, in)
		assert.True(t, IsInvalidInput(err))
	})

	t.Run("non-positive distance", func(t *testing.T) {
		in := valid
		in.DistanceKm = 0
		_, err := engine.CreateBooking(ctx, customer, in)
		assert.True(t, IsInvalidInput(err))
	})

	t.Run("pickup in the past", func(t *testing.T) {
		in := valid
		in.TargetPickupTime = time.Now().Add(-time.Minute)
		_, err := engine.CreateBooking(ctx, customer, in)
		assert.True(t, IsInvalidInput(err))
	})
}

func TestCreateBooking(t *testing.T) {
	engine, mock := newTestEngine(t)
	customer := models.Actor{ID: 1, Role: models.RoleCustomer}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	booking, err := engine.CreateBooking(context.Background(), customer, CreateBookingInput{
		PickupLocation:        "Airport",
		DropLocation:          "Downtown",
		RequestedVehicleClass: models.VehicleClassSedan,
		DistanceKm:            12,
		TargetPickupTime:      time.Now().Add(2 * time.Hour),
		PaymentMode:           models.PaymentModeOnline,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(42), booking.ID)
	assert.Equal(t, models.BookingStatusRequested, booking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelByCustomerWrongOwner(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 99,
			Status:     models.BookingStatusRequested,
		}))
	mock.ExpectRollback()

	err := engine.CancelByCustomer(context.Background(), models.Actor{ID: 1, Role: models.RoleCustomer}, 5)
	assert.True(t, IsUnauthorized(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelByCustomerWrongState(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 1,
			Status:     models.BookingStatusStarted,
		}))
	mock.ExpectRollback()

	err := engine.CancelByCustomer(context.Background(), models.Actor{ID: 1, Role: models.RoleCustomer}, 5)
	assert.True(t, IsStateTransition(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptAlreadyAccepted(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 1,
			VendorID:   uintPtr(2),
			Status:     models.BookingStatusAccepted,
		}))
	mock.ExpectRollback()

	_, err := engine.Accept(context.Background(), models.Actor{ID: 3, Role: models.RoleVendor}, 5)
	assert.True(t, IsStateTransition(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptNoVehicleAvailable(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:                 gorm.Model{ID: 5},
			CustomerID:            1,
			RequestedVehicleClass: models.VehicleClassSUV,
			DistanceKm:            10,
			Status:                models.BookingStatusRequested,
		}))
	mock.ExpectQuery(`SELECT \* FROM "vehicles".*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := engine.Accept(context.Background(), models.Actor{ID: 2, Role: models.RoleVendor}, 5)
	assert.True(t, IsResourceUnavailable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccept(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:                 gorm.Model{ID: 5},
			CustomerID:            1,
			RequestedVehicleClass: models.VehicleClassSedan,
			DistanceKm:            10,
			PaymentMode:           models.PaymentModeOnline,
			Status:                models.BookingStatusRequested,
		}))
	mock.ExpectQuery(`SELECT \* FROM "vehicles".*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor_id", "vehicle_type", "is_available"}).
			AddRow(11, 2, "sedan", true))
	mock.ExpectQuery(`SELECT \* FROM "drivers".*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "vendor_id", "is_available"}).
			AddRow(4, 7, 2, true))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	result, err := engine.Accept(context.Background(), models.Actor{ID: 2, Role: models.RoleVendor}, 5)
	require.NoError(t, err)
	assert.Equal(t, uint(1), result.CustomerID)
	assert.Equal(t, uint(7), result.DriverID)
	assert.Equal(t, uint(11), result.VehicleID)
	assert.Equal(t, 210.0, result.Fare) // sedan: 70 + 10*14
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssign(t *testing.T) {
	engine, mock := newTestEngine(t)

	// Ordered expectations: the vehicle row locks before the driver
	// row, same as the accept path.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 1,
			VendorID:   uintPtr(2),
			Status:     models.BookingStatusAccepted,
		}))
	mock.ExpectQuery(`SELECT \* FROM "vehicles".*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor_id", "vehicle_type", "is_available"}).
			AddRow(11, 2, "sedan", true))
	mock.ExpectQuery(`SELECT \* FROM "drivers".*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "vendor_id", "is_available"}).
			AddRow(4, 7, 2, true))
	mock.ExpectExec(`UPDATE "drivers" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "vehicles" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	result, err := engine.Assign(context.Background(), models.Actor{ID: 2, Role: models.RoleVendor}, 5, 7, 11)
	require.NoError(t, err)
	assert.Equal(t, uint(1), result.CustomerID)
	assert.Equal(t, uint(7), result.DriverID)
	assert.Equal(t, uint(11), result.VehicleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignVehicleOwnedByOtherVendor(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 1,
			VendorID:   uintPtr(2),
			Status:     models.BookingStatusAccepted,
		}))
	mock.ExpectQuery(`SELECT \* FROM "vehicles".*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor_id", "vehicle_type", "is_available"}).
			AddRow(11, 3, "sedan", true))
	mock.ExpectRollback()

	_, err := engine.Assign(context.Background(), models.Actor{ID: 2, Role: models.RoleVendor}, 5, 7, 11)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsResourceUnavailable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignDriverNotAvailable(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 1,
			VendorID:   uintPtr(2),
			Status:     models.BookingStatusAccepted,
		}))
	mock.ExpectQuery(`SELECT \* FROM "vehicles".*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor_id", "vehicle_type", "is_available"}).
			AddRow(11, 2, "sedan", true))
	mock.ExpectQuery(`SELECT \* FROM "drivers".*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "vendor_id", "is_available"}).
			AddRow(4, 7, 2, false))
	mock.ExpectRollback()

	_, err := engine.Assign(context.Background(), models.Actor{ID: 2, Role: models.RoleVendor}, 5, 7, 11)
	assert.True(t, IsResourceUnavailable(err))
	assert.False(t, IsUnauthorized(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignWrongVendor(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 1,
			VendorID:   uintPtr(2),
			Status:     models.BookingStatusAccepted,
		}))
	mock.ExpectRollback()

	_, err := engine.Assign(context.Background(), models.Actor{ID: 9, Role: models.RoleVendor}, 5, 7, 11)
	assert.True(t, IsUnauthorized(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartTripOnlineUnpaid(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:       gorm.Model{ID: 5},
			CustomerID:  1,
			VendorID:    uintPtr(2),
			DriverID:    uintPtr(7),
			VehicleID:   uintPtr(11),
			PaymentMode: models.PaymentModeOnline,
			Status:      models.BookingStatusAssigned,
		}))
	mock.ExpectQuery(`SELECT \* FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "status"}).
			AddRow(1, 5, "pending"))
	mock.ExpectRollback()

	_, err := engine.StartTrip(context.Background(), models.Actor{ID: 7, Role: models.RoleDriver}, 5)
	assert.True(t, IsInvalidInput(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartTripWrongDriver(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 1,
			DriverID:   uintPtr(8),
			Status:     models.BookingStatusAssigned,
		}))
	mock.ExpectRollback()

	_, err := engine.StartTrip(context.Background(), models.Actor{ID: 7, Role: models.RoleDriver}, 5)
	assert.True(t, IsUnauthorized(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartTripWrongState(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 1,
			DriverID:   uintPtr(7),
			Status:     models.BookingStatusCompleted,
		}))
	mock.ExpectRollback()

	_, err := engine.StartTrip(context.Background(), models.Actor{ID: 7, Role: models.RoleDriver}, 5)
	assert.True(t, IsStateTransition(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmergencyCancelRequestedBooking(t *testing.T) {
	engine, mock := newTestEngine(t)

	// requested -> cancelled is a legal edge, but it belongs to the
	// rider's own cancel, not the emergency path.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 1,
			Status:     models.BookingStatusRequested,
		}))
	mock.ExpectRollback()

	_, err := engine.EmergencyCancel(context.Background(), models.Actor{ID: 1, Role: models.RoleCustomer}, 5, "changed plans")
	assert.True(t, IsStateTransition(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmergencyCancelCompletedBooking(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 1,
			DriverID:   uintPtr(7),
			Status:     models.BookingStatusCompleted,
		}))
	mock.ExpectRollback()

	_, err := engine.EmergencyCancel(context.Background(), models.Actor{ID: 1, Role: models.RoleCustomer}, 5, "too late")
	assert.True(t, IsStateTransition(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEndTripReleasesResources(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:       gorm.Model{ID: 5},
			CustomerID:  1,
			VendorID:    uintPtr(2),
			DriverID:    uintPtr(7),
			VehicleID:   uintPtr(11),
			PaymentMode: models.PaymentModeCash,
			TotalAmount: floatPtr(210),
			Status:      models.BookingStatusStarted,
		}))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "drivers" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "vehicles" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	result, err := engine.EndTrip(context.Background(), models.Actor{ID: 7, Role: models.RoleDriver}, 5)
	require.NoError(t, err)
	assert.Equal(t, uint(7), result.DriverID)
	assert.Equal(t, uint(11), result.VehicleID)
	assert.Equal(t, models.PaymentModeCash, result.PaymentMode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmCashPaymentAlreadyPaid(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:       gorm.Model{ID: 5},
			CustomerID:  1,
			DriverID:    uintPtr(7),
			PaymentMode: models.PaymentModeCash,
			Status:      models.BookingStatusCompleted,
		}))
	mock.ExpectQuery(`SELECT \* FROM "payments".*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "status"}).
			AddRow(1, 5, "paid"))
	mock.ExpectRollback()

	_, err := engine.ConfirmCashPayment(context.Background(), models.Actor{ID: 7, Role: models.RoleDriver}, 5)
	assert.True(t, IsAlreadyProcessed(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmCashPaymentNotCompleted(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:       gorm.Model{ID: 5},
			CustomerID:  1,
			DriverID:    uintPtr(7),
			PaymentMode: models.PaymentModeCash,
			Status:      models.BookingStatusStarted,
		}))
	mock.ExpectRollback()

	_, err := engine.ConfirmCashPayment(context.Background(), models.Actor{ID: 7, Role: models.RoleDriver}, 5)
	assert.True(t, IsStateTransition(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOnProviderSuccessIdempotent(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:       gorm.Model{ID: 5},
			CustomerID:  1,
			PaymentMode: models.PaymentModeOnline,
			Status:      models.BookingStatusAccepted,
		}))
	mock.ExpectQuery(`SELECT \* FROM "payments".*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "status"}).
			AddRow(1, 5, "paid"))
	mock.ExpectCommit()

	already, customerID, err := engine.OnProviderSuccess(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, uint(1), customerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOnProviderSuccess(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:       gorm.Model{ID: 5},
			CustomerID:  1,
			PaymentMode: models.PaymentModeOnline,
			Status:      models.BookingStatusAccepted,
		}))
	mock.ExpectQuery(`SELECT \* FROM "payments".*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "status"}).
			AddRow(1, 5, "pending"))
	mock.ExpectExec(`UPDATE "payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	already, customerID, err := engine.OnProviderSuccess(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, uint(1), customerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmergencyCancel(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 1,
			VendorID:   uintPtr(2),
			DriverID:   uintPtr(7),
			VehicleID:  uintPtr(11),
			Status:     models.BookingStatusStarted,
		}))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "drivers" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "vehicles" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "emergency_cancellations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	result, err := engine.EmergencyCancel(context.Background(), models.Actor{ID: 7, Role: models.RoleDriver}, 5, "vehicle breakdown")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusStarted, result.OldStatus)
	require.NotNil(t, result.DriverID)
	assert.Equal(t, uint(7), *result.DriverID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmergencyCancelRequiresReason(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.EmergencyCancel(context.Background(), models.Actor{ID: 7, Role: models.RoleDriver}, 5, "")
	assert.True(t, IsInvalidInput(err))
}

func TestEmergencyCancelUninvolvedActor(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings".*FOR UPDATE`).
		WillReturnRows(bookingRow(models.Booking{
			Model:      gorm.Model{ID: 5},
			CustomerID: 1,
			VendorID:   uintPtr(2),
			DriverID:   uintPtr(7),
			Status:     models.BookingStatusStarted,
		}))
	mock.ExpectRollback()

	_, err := engine.EmergencyCancel(context.Background(), models.Actor{ID: 99, Role: models.RoleDriver}, 5, "traffic")
	assert.True(t, IsUnauthorized(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
