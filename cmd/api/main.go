package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shiftwise/attendance-backend-go/internal/config"
	appHTTP "github.com/shiftwise/attendance-backend-go/internal/handler/http"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/clock"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/cron"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/database"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/jwt"
	"github.com/shiftwise/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/shiftwise/attendance-backend-go/internal/service/attendance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	dayRecordRepo := postgresql.NewDayRecordRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)
	shiftProvider := postgresql.NewShiftProvider(db, cfg.Attendance.DefaultGraceMinutes)
	leaveOracle := postgresql.NewLeaveOracle(db)
	employeeDirectory := postgresql.NewEmployeeDirectory(db)

	clk := clock.NewSystemClock(cfg.App.Timezone)
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	attendanceSvc := attendanceService.NewAttendanceService(
		dayRecordRepo,
		shiftProvider,
		leaveOracle,
		auditRepo,
		clk,
		cfg.Attendance,
	)

	finalizer := attendanceService.NewFinalizer(
		dayRecordRepo,
		employeeDirectory,
		shiftProvider,
		leaveOracle,
		auditRepo,
		clk,
		cfg.Attendance,
	)

	scheduler := cron.NewScheduler()
	finalizer.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	router := appHTTP.NewRouter(cfg, JWTService, attendanceHandler, scheduler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: port, Handler: router}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down...")
	_ = server.Close()
}
