package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/ovenlight/bakehouse-api/internal/domain/catalog"
)

// ListProducts answers GET /api/products with the full catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, p := range products {
			encodeProduct(e, p)
		}
	})
	writeJSON(w, http.StatusOK, &e)
}

func encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(string(p.ID)) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("basePrice", func(e *jx.Encoder) { e.RawStr(p.BasePrice.String()) })
		e.Field("flavorIds", func(e *jx.Encoder) { encodeIDs(e, p.FlavorIDs) })
		e.Field("diameters", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, d := range p.Diameters {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(string(d.ID)) })
						e.Field("multiplier", func(e *jx.Encoder) { e.RawStr(d.Multiplier.String()) })
					})
				}
			})
		})
		e.Field("allowInscription", func(e *jx.Encoder) { e.Bool(p.AllowInscription) })
		e.Field("inscriptionPrice", func(e *jx.Encoder) { e.RawStr(p.InscriptionPrice.String()) })
		e.Field("categoryId", func(e *jx.Encoder) { e.Str(string(p.CategoryID)) })
		e.Field("collectionIds", func(e *jx.Encoder) { encodeIDs(e, p.CollectionIDs) })
		e.Field("seasonalIds", func(e *jx.Encoder) { encodeIDs(e, p.SeasonalIDs) })
	})
}

func encodeIDs(e *jx.Encoder, ids []catalog.EntityID) {
	e.Arr(func(e *jx.Encoder) {
		for _, id := range ids {
			e.Str(string(id))
		}
	})
}
