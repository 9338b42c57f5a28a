// Command findalt runs a single alternative lookup and prints the response as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/smartshop/backend/config"
	"github.com/smartshop/backend/internal/app"
	"github.com/smartshop/backend/internal/domain"
	"github.com/urfave/cli/v2"
)

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

func main() {
	cliApp := &cli.App{
		Name:  "findalt",
		Usage: "find cheaper alternatives for a product page or photo",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "product page URL"},
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Usage: "path to a JPEG, PNG or WEBP product photo"},
			&cli.BoolFlag{Name: "pretty", Usage: "indent the JSON output"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
		},
		Action: findAction,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func findAction(c *cli.Context) error {
	productURL := c.String("url")
	imagePath := c.String("image")
	if (productURL == "") == (imagePath == "") {
		return cli.Exit("exactly one of --url or --image is required", 2)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg.Server)
	logger.SetOutput(os.Stderr)
	if c.Bool("quiet") {
		logger.SetLevel(logrus.ErrorLevel)
	}

	application, err := app.New(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	var response *domain.FindResponse
	if productURL != "" {
		response, err = application.Finder.FindByURL(c.Context, &domain.FindByURLRequest{URL: productURL})
	} else {
		var image *domain.ImageInput
		image, err = readImage(imagePath)
		if err != nil {
			return err
		}
		response, err = application.Finder.FindByImage(c.Context, image)
	}
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(c.App.Writer)
	if c.Bool("pretty") {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(response)
}

func readImage(path string) (*domain.ImageInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	mimeType, ok := imageTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		mimeType = http.DetectContentType(data)
	}
	for _, allowed := range imageTypes {
		if mimeType == allowed {
			return &domain.ImageInput{Data: data, MIMEType: mimeType}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedImage, mimeType)
}
