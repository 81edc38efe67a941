package main

import (
	"context"
	"errors"
	"log"
	"time"

	"hightense/internal/config"
	"hightense/internal/core/adventure"
	"hightense/internal/core/focus"
	"hightense/internal/core/model"
	"hightense/internal/core/timekeeper"
	"hightense/internal/logging"
	"hightense/internal/platform"
	"hightense/internal/storage"
	"hightense/internal/ui/animation"
	"hightense/internal/ui/execution"
	"hightense/internal/ui/finished"
	"hightense/internal/ui/planner"
	"hightense/internal/ui/preferences"
	"hightense/internal/ui/tray"
	"hightense/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"go.uber.org/zap"
)

const appName = "hightense"

func main() {
	cfg, err := config.Load(appName)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Dir: cfg.DataFolder})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	guard, err := platform.AcquireSingleInstance(appName, logger)
	if err != nil {
		logger.Info("single instance", zap.Error(err))
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	if err := run(cfg, logger, guard); err != nil {
		logger.Error("run", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger, guard *platform.InstanceGuard) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settings, err := storage.LoadSettings(cfg.DataFolder)
	if err != nil {
		logger.Warn("load settings, using defaults", zap.Error(err))
	}

	taskStore, err := storage.OpenTaskStore(cfg.DataFolder)
	if err != nil {
		return err
	}
	defer func() {
		_ = taskStore.Close()
	}()

	keeper := timekeeper.New(settings.SessionConfig(), timekeeper.Config{
		TickInterval: time.Second,
		Store:        storage.NewSessionFile(cfg.DataFolder),
		Logger:       logger,
	})
	defer keeper.Close()

	scheduler := adventure.New(adventure.Config{Policy: settings.ThresholdPolicy, Logger: logger})
	coordinator := focus.New(keeper, scheduler, taskStore, logger)

	fyneApp := app.NewWithID("com.hightense.app")
	logo := resources.MustLogo(resources.AppLogo)
	pet := resources.MustSprite(resources.PetSprite)
	fyneApp.SetIcon(logo)

	var (
		plannerWindow   *planner.Window
		executionWindow *execution.Window
		finishedWindow  *finished.Window
		prefsWindow     *preferences.Window
		trayManager     *tray.Manager
		engine          *animation.Engine
	)

	showPlanner := func() {
		plannerWindow.SetSessionLength(keeper.Remaining())
		plannerWindow.Show()
	}

	leaveSession := func() {
		coordinator.Exit()
		if trayManager != nil {
			trayManager.SetHasTask(false)
		}
		showPlanner()
	}

	finishedWindow = finished.New(fyneApp, pet, leaveSession)

	executionWindow = execution.New(fyneApp, pet, execution.Callbacks{
		OnToggle: func() {
			coordinator.Toggle()
		},
		OnExit: func() {
			engine.Stop()
			executionWindow.Hide()
			leaveSession()
		},
		OnMarkComplete: func() {
			task, err := coordinator.ConfirmComplete(ctx)
			switch {
			case errors.Is(err, focus.ErrNoTaskSelected):
				logger.Info("session finished without a task")
			case err != nil:
				logger.Error("confirm complete", zap.Error(err))
				dialog.ShowError(err, executionWindow.Window())
				return
			default:
				logger.Info("session finished", zap.String("task", task.Name))
			}
			engine.Stop()
			executionWindow.Hide()
			finishedWindow.Show()
		},
		OnPetTapped: func() {
			engine.Tap(ctx)
		},
	})

	engine = animation.New(animation.DefaultConfig(), executionWindow.SetPose, executionWindow.SetStatus)
	scheduler.SetOnAdventure(func(outcome adventure.Outcome) {
		logger.Debug("adventure", zap.Int("code", outcome.Code), zap.String("label", outcome.Label))
		engine.Play(ctx, outcome)
	})

	plannerWindow = planner.New(fyneApp, taskStore, planner.Callbacks{
		OnSelect: func(task model.Task) {
			selected, err := coordinator.SelectTask(ctx, task.ID)
			if err != nil {
				logger.Warn("select task", zap.String("task", task.ID), zap.Error(err))
				dialog.ShowError(err, plannerWindow.Window())
				return
			}
			if trayManager != nil {
				trayManager.SetHasTask(true)
			}
			executionWindow.Show(selected.Name, keeper.Remaining())
			plannerWindow.Hide()
		},
		OnAdjust: coordinator.AdjustDuration,
		OnPreferences: func() {
			prefsWindow.Show()
		},
	}, logger)
	plannerWindow.Window().SetMaster()

	prefsWindow = preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		settings = updated
		if err := storage.SaveSettings(cfg.DataFolder, settings); err != nil {
			logger.Error("save settings", zap.Error(err))
			dialog.ShowError(err, plannerWindow.Window())
		}
		coordinator.ApplyConfig(settings.SessionConfig())
		scheduler.SetPolicy(settings.ThresholdPolicy)
		plannerWindow.SetSessionLength(keeper.Remaining())
	})

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		desktopApp.SetSystemTrayIcon(logo)
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnOpenPlanner: showPlanner,
			OnPreferences: prefsWindow.Show,
			OnToggle: func() {
				coordinator.Toggle()
			},
			OnQuit: fyneApp.Quit,
		})
	} else {
		logger.Info("system tray unsupported on this platform")
	}

	guard.Serve(func() {
		fyne.Do(showPlanner)
	})

	events := keeper.Subscribe(16)
	go pumpEvents(events, executionWindow, func(event timekeeper.Event) {
		if trayManager != nil {
			trayManager.Update(event.State, event.Remaining)
		}
	}, logger)

	fyneApp.Lifecycle().SetOnStopped(func() {
		engine.Stop()
		keeper.Suspend()
	})

	switch state := coordinator.Restore(); state {
	case timekeeper.StateRunning, timekeeper.StatePaused, timekeeper.StateComplete:
		logger.Info("session restored", zap.String("state", string(state)), zap.Duration("remaining", keeper.Remaining()))
		executionWindow.Show("Restored session", keeper.Remaining())
		executionWindow.HandleEvent(timekeeper.Event{Type: timekeeper.EventStateChange, State: state, Remaining: keeper.Remaining()})
		if state == timekeeper.StateComplete {
			executionWindow.HandleEvent(timekeeper.Event{Type: timekeeper.EventComplete, State: state})
		}
	default:
		showPlanner()
	}
	if settings.ShowIntro {
		finished.ShowIntro(fyneApp, pet)
	}

	fyneApp.Run()
	return nil
}

func pumpEvents(events <-chan timekeeper.Event, executionWindow *execution.Window, onTray func(timekeeper.Event), logger *zap.Logger) {
	for event := range events {
		switch event.Type {
		case timekeeper.EventStoreError:
			logger.Warn("session state", zap.Error(errors.New(event.Message)))
			continue
		case timekeeper.EventComplete:
			logger.Info("session complete", zap.String("task", event.TaskID))
		}
		executionWindow.HandleEvent(event)
		fyne.Do(func() {
			onTray(event)
		})
	}
}
