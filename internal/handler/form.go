package handler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
)

const (
	maxUploadSize = 10 << 20

	fieldTitle       = "listing[title]"
	fieldDescription = "listing[description]"
	fieldLocation    = "listing[location]"
	fieldCountry     = "listing[country]"
	fieldPrice       = "listing[price]"
	fieldType        = "listing[type]"
	fieldImage       = "listing[image]"
)

var allowedImageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

var errFormTooLarge = errors.New("request body too large")

// parseListingForm reads a multipart or urlencoded body into r.PostForm.
func parseListingForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+(1<<20))

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxUploadSize)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errFormTooLarge
		}
		return fmt.Errorf("parse listing form: %w", err)
	}
	return nil
}

// DecodeListingInput validates a complete listing form.
func DecodeListingInput(r *http.Request) (domain.ListingInput, error) {
	verr := &domain.ValidationError{}
	in := domain.ListingInput{
		Title:       requiredText(r, fieldTitle, verr),
		Description: requiredText(r, fieldDescription, verr),
		Location:    requiredText(r, fieldLocation, verr),
		Country:     requiredText(r, fieldCountry, verr),
	}

	if raw, ok := formValue(r, fieldPrice); !ok || raw == "" {
		verr.Add(fieldPrice, "is required")
	} else if price, msg := parsePrice(raw); msg != "" {
		verr.Add(fieldPrice, msg)
	} else {
		in.Price = price
	}

	if raw, ok := formValue(r, fieldType); !ok || raw == "" {
		verr.Add(fieldType, "is required")
	} else if c := domain.Category(raw); !c.IsValid() {
		verr.Add(fieldType, typeMessage())
	} else {
		in.Type = c
	}

	if err := verr.ErrOrNil(); err != nil {
		return domain.ListingInput{}, err
	}
	return in, nil
}

// DecodeListingPatch validates the fields present in an update form. Absent
// fields stay nil and are left untouched; present ones follow the same rules
// as on creation.
func DecodeListingPatch(r *http.Request) (domain.ListingPatch, error) {
	verr := &domain.ValidationError{}
	var patch domain.ListingPatch

	patch.Title = optionalText(r, fieldTitle, verr)
	patch.Description = optionalText(r, fieldDescription, verr)
	patch.Location = optionalText(r, fieldLocation, verr)
	patch.Country = optionalText(r, fieldCountry, verr)

	if raw, ok := formValue(r, fieldPrice); ok {
		if price, msg := parsePrice(raw); msg != "" {
			verr.Add(fieldPrice, msg)
		} else {
			patch.Price = &price
		}
	}

	if raw, ok := formValue(r, fieldType); ok {
		if c := domain.Category(raw); !c.IsValid() {
			verr.Add(fieldType, typeMessage())
		} else {
			patch.Type = &c
		}
	}

	if err := verr.ErrOrNil(); err != nil {
		return domain.ListingPatch{}, err
	}
	return patch, nil
}

// uploadImage stores the listing[image] file when one was sent. It returns
// nil when the form carries no file.
func uploadImage(ctx context.Context, r *http.Request, storage domain.Storage) (*domain.Image, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File[fieldImage]
	if len(files) == 0 || files[0].Filename == "" {
		return nil, nil
	}
	header := files[0]

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedImageExtensions[ext]; !ok {
		verr := &domain.ValidationError{}
		verr.Add(fieldImage, "must be a png, jpg or jpeg file")
		return nil, verr
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded image: %w", err)
	}
	defer f.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	img, err := storage.Upload(ctx, header.Filename, f, header.Size, contentType)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func formValue(r *http.Request, field string) (string, bool) {
	vs, ok := r.PostForm[field]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return strings.TrimSpace(vs[0]), true
}

func requiredText(r *http.Request, field string, verr *domain.ValidationError) string {
	v, ok := formValue(r, field)
	if !ok || v == "" {
		verr.Add(field, "is required")
		return ""
	}
	return v
}

func optionalText(r *http.Request, field string, verr *domain.ValidationError) *string {
	v, ok := formValue(r, field)
	if !ok {
		return nil
	}
	if v == "" {
		verr.Add(field, "must not be empty")
		return nil
	}
	return &v
}

func parsePrice(raw string) (float64, string) {
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, "must be a number"
	}
	if price < 0 {
		return 0, "must be greater than or equal to 0"
	}
	return price, ""
}

func typeMessage() string {
	return "must be one of " + strings.Join(domain.CategoryNames(), ", ")
}
