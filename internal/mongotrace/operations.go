package mongotrace

// Span names, one per exposed operation.
const (
	opFindOne                           = "find_one"
	opFindOneWithSession                = "find_one_with_session"
	opFind                              = "find"
	opFindWithSession                   = "find_with_session"
	opFindOneAndDelete                  = "find_one_and_delete"
	opFindOneAndDeleteWithSession       = "find_one_and_delete_with_session"
	opFindOneAndReplace                 = "find_one_and_replace"
	opFindOneAndReplaceWithSession      = "find_one_and_replace_with_session"
	opFindOneAndUpdate                  = "find_one_and_update"
	opFindOneAndUpdateWithSession       = "find_one_and_update_with_session"
	opInsertOne                         = "insert_one"
	opInsertOneWithSession              = "insert_one_with_session"
	opInsertMany                        = "insert_many"
	opInsertManyWithSession             = "insert_many_with_session"
	opReplaceOne                        = "replace_one"
	opReplaceOneWithSession             = "replace_one_with_session"
	opUpdateOne                         = "update_one"
	opUpdateOneWithSession              = "update_one_with_session"
	opUpdateMany                        = "update_many"
	opUpdateManyWithSession             = "update_many_with_session"
	opUpdateByID                        = "update_by_id"
	opUpdateByIDWithSession             = "update_by_id_with_session"
	opDeleteOne                         = "delete_one"
	opDeleteOneWithSession              = "delete_one_with_session"
	opDeleteMany                        = "delete_many"
	opDeleteManyWithSession             = "delete_many_with_session"
	opBulkWrite                         = "bulk_write"
	opBulkWriteWithSession              = "bulk_write_with_session"
	opCountDocuments                    = "count_documents"
	opCountDocumentsWithSession         = "count_documents_with_session"
	opEstimatedDocumentCount            = "estimated_document_count"
	opEstimatedDocumentCountWithSession = "estimated_document_count_with_session"
	opDistinct                          = "distinct"
	opDistinctWithSession               = "distinct_with_session"
	opAggregate                         = "aggregate"
	opAggregateWithSession              = "aggregate_with_session"
	opWatch                             = "watch"
	opWatchWithSession                  = "watch_with_session"
	opCreateIndex                       = "create_index"
	opCreateIndexWithSession            = "create_index_with_session"
	opCreateIndexes                     = "create_indexes"
	opCreateIndexesWithSession          = "create_indexes_with_session"
	opListIndexes                       = "list_indexes"
	opListIndexesWithSession            = "list_indexes_with_session"
	opListIndexSpecs                    = "list_index_specifications"
	opListIndexSpecsWithSession         = "list_index_specifications_with_session"
	opDropIndex                         = "drop_index"
	opDropIndexWithSession              = "drop_index_with_session"
	opDropIndexes                       = "drop_indexes"
	opDropIndexesWithSession            = "drop_indexes_with_session"
	opDrop                              = "drop"
	opDropWithSession                   = "drop_with_session"
)
