package main

import (
	"time"

	"github.com/barrigacheea/marketplace/internal/produto"
)

// seedProdutos loads a handful of demonstration listings into an empty
// store. Expiration dates are laid out relative to startup so the demo
// shows every lifecycle status.
func seedProdutos(store *produto.Store) int {
	now := time.Now()

	seeds := []struct {
		in     produto.Input
		status produto.Status
	}{
		{
			in: produto.Input{
				PhotoDescription: "Cesta com frutas frescas e saudáveis, perfeitas para consumo imediato",
				Name:             "Cesta de Frutas Variadas",
				PickupInfo:       "Retirada na Rua das Flores, 123 - Centro. Disponível das 8h às 18h",
				Description:      "Cesta com frutas frescas e saudáveis. Inclui maçãs, bananas, laranjas e outras frutas da estação.",
				ExpirationDate:   now.AddDate(0, 0, 14),
				ReleaseTime:      "2 horas",
			},
		},
		{
			in: produto.Input{
				PhotoDescription: "Pães frescos de padaria artesanal",
				Name:             "Pães Artesanais Frescos",
				PickupInfo:       "Padaria do João - Av. Principal, 456. Retirar até 20h",
				Description:      "Pães frescos feitos artesanalmente na manhã de hoje. Pão francês, integral e de centeio.",
				ExpirationDate:   now.AddDate(0, 0, 2),
				ReleaseTime:      "1 hora",
			},
			status: produto.StatusLiberados,
		},
		{
			in: produto.Input{
				PhotoDescription: "Legumes frescos da horta orgânica local",
				Name:             "Legumes Orgânicos da Horta",
				PickupInfo:       "Feira Orgânica - Praça Central. Sábados das 7h às 12h",
				Description:      "Legumes frescos e orgânicos colhidos diretamente da horta. Cenouras, abobrinha, brócolis e couve-flor.",
				ExpirationDate:   now.AddDate(0, 0, 9),
				ReleaseTime:      "3 horas",
			},
		},
		{
			in: produto.Input{
				PhotoDescription: "Refeições prontas congeladas caseiras",
				Name:             "Marmitas Caseiras Congeladas",
				PickupInfo:       "Cozinha Solidária - Rua da Esperança, 789. Segunda a sexta, 12h às 14h",
				Description:      "Marmitas caseiras preparadas com ingredientes frescos. Prontas para aquecer e servir.",
				ExpirationDate:   now.AddDate(0, 1, 0),
				ReleaseTime:      "4 horas",
			},
			status: produto.StatusLiberados,
		},
		{
			in: produto.Input{
				PhotoDescription: "Produtos lácteos frescos da fazenda local como leite, queijo e iogurte",
				Name:             "Laticínios Frescos da Fazenda",
				PickupInfo:       "Fazenda Esperança - Estrada Rural, Km 15. Todos os dias das 6h às 10h",
				Description:      "Leite fresco, queijo artesanal e iogurte natural produzidos na fazenda, sem conservantes.",
				ExpirationDate:   now.AddDate(0, 0, -2),
				ReleaseTime:      "30 minutos",
			},
		},
	}

	for _, seed := range seeds {
		p := store.Add(seed.in)
		if seed.status != "" {
			store.SetStatus(p.ID, seed.status)
		}
	}
	return len(seeds)
}
