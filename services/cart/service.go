package cart

import (
	"github.com/MarcGrol/catalogshop/lib/mylog"
	"github.com/MarcGrol/catalogshop/lib/mypublisher"
	"github.com/MarcGrol/catalogshop/lib/mystore"
	"github.com/MarcGrol/catalogshop/lib/mytime"
	"github.com/MarcGrol/catalogshop/lib/myuuid"
	"github.com/MarcGrol/catalogshop/services/catalog"
)

type service struct {
	cartStore    mystore.Store[Cart]
	productStore mystore.Store[catalog.Product]
	publisher    mypublisher.Publisher
	nower        mytime.Nower
	uuider       myuuid.UUIDer
	logger       mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(cartStore mystore.Store[Cart], productStore mystore.Store[catalog.Product], nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger, pub mypublisher.Publisher) *service {
	return &service{
		cartStore:    cartStore,
		productStore: productStore,
		publisher:    pub,
		nower:        nower,
		uuider:       uuider,
		logger:       logger,
	}
}
