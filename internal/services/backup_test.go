package services

import (
	"errors"
	"testing"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
)

func newBackupService() *BackupServiceImpl {
	return NewBackupService(NewTaskService(), NewCategoryService())
}

func TestExport(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice")
	service := newBackupService()

	work := mustCreateCategory(t, db, owner, CreateCategoryInput{Name: "Work"})
	mustCreateTask(t, db, owner, CreateTaskInput{Title: "Task one", CategoryIDs: []string{work.ID.String()}})
	mustCreateTask(t, db, owner, CreateTaskInput{Title: "Task two"})

	data, err := service.Export(db, owner)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if data.Version != ExportVersion {
		t.Errorf("expected version %s, got %s", ExportVersion, data.Version)
	}
	if data.User.Username != "alice" {
		t.Errorf("expected exported user alice, got %s", data.User.Username)
	}
	if len(data.Tasks) != 2 {
		t.Errorf("expected 2 exported tasks, got %d", len(data.Tasks))
	}
	if len(data.Categories) != 1 {
		t.Errorf("expected 1 exported category, got %d", len(data.Categories))
	}
}

func TestExportUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	service := newBackupService()

	_, err := service.Export(db, uuid.Must(uuid.NewV4()))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestImportRejectsInvalidEnvelope(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice")
	service := newBackupService()

	cases := []ExportData{
		{},
		{Version: "1.0", Tasks: []models.Task{}},
		{Version: "1.0", Categories: []models.Category{}},
		{Tasks: []models.Task{}, Categories: []models.Category{}},
	}
	for i, data := range cases {
		if _, err := service.Import(db, owner, data); !errors.Is(err, ErrInvalidEnvelope) {
			t.Errorf("case %d: expected ErrInvalidEnvelope, got %v", i, err)
		}
	}
}

func TestImportRemapsCategoryIDs(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	service := newBackupService()

	work := mustCreateCategory(t, db, alice, CreateCategoryInput{Name: "Work"})
	mustCreateTask(t, db, alice, CreateTaskInput{Title: "Tagged", CategoryIDs: []string{work.ID.String()}})

	data, err := service.Export(db, alice)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	result, err := service.Import(db, bob, data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("expected 2 imported records (category + task), got %d", result.Imported)
	}

	page, err := NewTaskService().ListTasks(db, bob, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(page.Tasks) != 1 {
		t.Fatalf("expected 1 imported task, got %d", len(page.Tasks))
	}
	imported := page.Tasks[0]
	if len(imported.CategoryIDs) != 1 {
		t.Fatalf("expected 1 remapped category id, got %v", imported.CategoryIDs)
	}
	if imported.CategoryIDs[0] == work.ID.String() {
		t.Error("imported task still references the exporter's category id")
	}

	// The remapped id must resolve to bob's own copy of the category.
	newID, err := uuid.FromString(imported.CategoryIDs[0])
	if err != nil {
		t.Fatalf("remapped id is not a uuid: %v", err)
	}
	category, err := NewCategoryService().GetCategoryByID(db, bob, newID)
	if err != nil {
		t.Fatalf("remapped category lookup failed: %v", err)
	}
	if category.Name != "Work" {
		t.Errorf("expected remapped category Work, got %s", category.Name)
	}
}

func TestImportReusesExistingCategoryByName(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	service := newBackupService()

	mustCreateCategory(t, db, alice, CreateCategoryInput{Name: "Shared"})
	existing := mustCreateCategory(t, db, bob, CreateCategoryInput{Name: "Shared"})

	data, err := service.Export(db, alice)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	result, err := service.Import(db, bob, data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 0 || result.Skipped != 1 {
		t.Errorf("expected the name match to be skipped, got %+v", result)
	}

	categories, err := NewCategoryService().ListCategories(db, bob)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != existing.ID {
		t.Errorf("expected bob to keep his single Shared category, got %+v", categories)
	}
}

func TestImportSkipsBadRecords(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice")
	service := newBackupService()

	data := ExportData{
		Version:    ExportVersion,
		Categories: []models.Category{},
		Tasks: []models.Task{
			{Title: "Good one"},
			{Title: ""}, // fails validation
			{Title: "Another good one"},
		},
	}

	result, err := service.Import(db, owner, data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("expected 2 imported tasks, got %d", result.Imported)
	}
	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped task, got %d", result.Skipped)
	}
}

func TestImportDropsUnmappedCategoryReferences(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice")
	service := newBackupService()

	data := ExportData{
		Version:    ExportVersion,
		Categories: []models.Category{},
		Tasks: []models.Task{
			{Title: "Orphan refs", CategoryIDs: []string{uuid.Must(uuid.NewV4()).String()}},
		},
	}

	result, err := service.Import(db, owner, data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("expected the task to import, got %+v", result)
	}

	page, err := NewTaskService().ListTasks(db, owner, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(page.Tasks[0].CategoryIDs) != 0 {
		t.Errorf("expected unmapped category ids to be dropped, got %v", page.Tasks[0].CategoryIDs)
	}
}

func TestDeleteAllData(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	service := newBackupService()

	mustCreateCategory(t, db, alice, CreateCategoryInput{Name: "Work"})
	mustCreateTask(t, db, alice, CreateTaskInput{Title: "Gone soon"})
	mustCreateTask(t, db, bob, CreateTaskInput{Title: "Survivor"})

	if err := service.DeleteAllData(db, alice); err != nil {
		t.Fatalf("DeleteAllData failed: %v", err)
	}

	page, err := NewTaskService().ListTasks(db, alice, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if page.Pagination.Total != 0 {
		t.Errorf("expected alice's tasks gone, got %d", page.Pagination.Total)
	}

	categories, err := NewCategoryService().ListCategories(db, alice)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(categories) != 0 {
		t.Errorf("expected alice's categories gone, got %d", len(categories))
	}

	page, err = NewTaskService().ListTasks(db, bob, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if page.Pagination.Total != 1 {
		t.Errorf("expected bob's task to survive, got %d", page.Pagination.Total)
	}
}
