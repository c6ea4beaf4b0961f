package models

// OrderSequenceModel holds the running order number sequence of one kind
// on one calendar day.
type OrderSequenceModel struct {
	Kind string `gorm:"type:varchar(20);primaryKey"`
	Day  string `gorm:"type:char(8);primaryKey"`
	Seq  int64  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderSequenceModel) TableName() string {
	return "order_sequences"
}

// All lists every model, in dependency order, for AutoMigrate in tests and
// development databases.
func All() []any {
	return []any{
		&ProductModel{},
		&SupplierModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderLineModel{},
		&InventoryBatchModel{},
		&TransactionGroupModel{},
		&JournalEntryModel{},
		&OrderSequenceModel{},
	}
}
