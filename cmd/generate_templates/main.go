package main

import (
	"flag"
	"os"
	"path/filepath"

	"property-crm/internal/models"
	"property-crm/internal/service"
	"property-crm/internal/utils"
)

func main() {
	dir := flag.String("out", "./storage/templates", "directory to write the import templates to")
	flag.Parse()

	log := utils.GetLogger()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.WithError(err).Fatal("Failed to create output directory")
	}

	excel := service.NewExcelService()
	for _, entity := range models.ImportEntities {
		text, err := service.GenerateTemplate(entity)
		if err != nil {
			log.WithError(err).WithField("entity", entity).Fatal("Failed to generate CSV template")
		}
		write(filepath.Join(*dir, service.TemplateFileName(entity, "csv")), []byte(text))

		content, err := excel.TemplateXLSX(entity)
		if err != nil {
			log.WithError(err).WithField("entity", entity).Fatal("Failed to generate XLSX template")
		}
		write(filepath.Join(*dir, service.TemplateFileName(entity, "xlsx")), content)
	}
}

func write(path string, content []byte) {
	if err := os.WriteFile(path, content, 0o644); err != nil {
		utils.GetLogger().WithError(err).WithField("path", path).Fatal("Failed to write template")
	}
	utils.GetLogger().WithField("path", path).Info("Template written")
}
